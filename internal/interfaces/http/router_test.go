package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/citrus-stock/internal/application/auth"
	"github.com/jhoicas/citrus-stock/internal/application/dto"
	applabels "github.com/jhoicas/citrus-stock/internal/application/labels"
	"github.com/jhoicas/citrus-stock/internal/application/usecase"
	"github.com/jhoicas/citrus-stock/internal/application/warehouse"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/authz"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/codegen"
	infralabels "github.com/jhoicas/citrus-stock/internal/infrastructure/labels"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/memory"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/citrus-stock/internal/interfaces/http"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

const routerSecret = "router-test-secret"

type server struct {
	app      *fiber.App
	admin    string
	operator string
}

// newServer arma la API completa sobre el almacenamiento en memoria con un ADMIN y un OPERATOR.
func newServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()

	s := memory.NewStore()
	s.Seed(ctx)
	users := memory.NewUserRepository(s)
	roles := memory.NewRoleRepository(s)
	perms := memory.NewPermissionRepository(s)
	products := memory.NewProductRepository(s)
	suppliers := memory.NewSupplierRepository(s)
	batches := memory.NewProductBatchRepository(s)
	boxes := memory.NewBoxRepository(s)
	zones := memory.NewZoneRepository(s)
	scans := memory.NewScanEventRepository(s)

	enforcer, err := authz.NewEnforcer(ctx, roles, log)
	require.NoError(t, err)

	m := metrics.NewWarehouse(prometheus.NewRegistry())
	enc := codegen.NewQREncoder()
	png := infralabels.NewPNGRenderer(enc, 64)

	userUC := usecase.NewUserUseCase(users, roles)
	userUC.SetHashCost(bcrypt.MinCost)
	_, err = userUC.Create(ctx, dto.CreateUserRequest{Username: "admin", Password: "admin-pass", Role: "ADMIN"})
	require.NoError(t, err)
	_, err = userUC.Create(ctx, dto.CreateUserRequest{Username: "operario", Password: "oper-pass", Role: "OPERATOR"})
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:       auth.NewAuthUseCase(users, memory.NewRefreshTokenRepository(s), auth.JWTConfig{Secret: routerSecret, ExpMinutes: 15, Issuer: "test", RefreshHours: 1}, log),
		BatchUC:      warehouse.NewBatchUseCase(s, batches, boxes, products, suppliers, m, log),
		BoxUC:        warehouse.NewBoxUseCase(boxes, batches, scans),
		ScanUC:       warehouse.NewScanUseCase(s, boxes, users, warehouse.NewLabelResolver(batches, boxes, products), enc, 64, m, log),
		StatusEngine: warehouse.NewStatusEngine(s, batches, boxes, zones, m, log),
		LabelUC:      applabels.NewUseCase(batches, boxes, products, zones, applabels.NewRegistry(png, infralabels.NewXLSXRenderer()), log),
		ProductUC:    usecase.NewProductUseCase(products),
		SupplierUC:   usecase.NewSupplierUseCase(suppliers),
		ZoneUC:       usecase.NewZoneUseCase(zones),
		UserUC:       userUC,
		RoleUC:       usecase.NewRoleUseCase(roles, perms, enforcer, log),
		PermissionUC: usecase.NewPermissionUseCase(perms, enforcer, log),
		LookupUC:     usecase.NewLookupUseCase(zones),
		Enforcer:     enforcer,
		JWTSecret:    routerSecret,
		Log:          log,
	})

	srv := &server{app: app}
	srv.admin = srv.login(t, "admin", "admin-pass")
	srv.operator = srv.login(t, "operario", "oper-pass")
	return srv
}

func (s *server) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *server) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	return out.Token
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, resp, &e)
	return e.Code
}

func (s *server) createProduct(t *testing.T, name string) dto.ProductResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/products", s.admin, dto.CreateProductRequest{Name: name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	return p
}

func (s *server) createBatch(t *testing.T, productID string, boxes int) dto.BatchResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/batches", s.admin, dto.CreateBatchRequest{ProductID: productID, BoxCount: &boxes})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var b dto.BatchResponse
	decode(t, resp, &b)
	return b
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesInvalidas(t *testing.T) {
	srv := newServer(t)
	resp := srv.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "admin", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	srv := newServer(t)
	resp := srv.do(t, http.MethodGet, "/api/batches", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUsersMe_DevuelveUsuarioDelToken(t *testing.T) {
	srv := newServer(t)
	resp := srv.do(t, http.MethodGet, "/api/users/me", srv.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u dto.UserResponse
	decode(t, resp, &u)
	assert.Equal(t, "operario", u.Username)
	assert.Equal(t, "OPERATOR", u.Role)
}

// ── Permisos ──────────────────────────────────────────────────────────────────

func TestOperador_NoPuedeCrearProductos(t *testing.T) {
	srv := newServer(t)
	resp := srv.do(t, http.MethodPost, "/api/products", srv.operator, dto.CreateProductRequest{Name: "Naranja"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
}

func TestOperador_PuedeLeerPartidas(t *testing.T) {
	srv := newServer(t)
	resp := srv.do(t, http.MethodGet, "/api/batches", srv.operator, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// ── Partidas y escaneo ────────────────────────────────────────────────────────

func TestFlujoCompleto_EscanearTodasLasCajasPromueveLaPartida(t *testing.T) {
	srv := newServer(t)
	product := srv.createProduct(t, "Mandarina")
	batch := srv.createBatch(t, product.ID, 3)
	require.Len(t, batch.Boxes, 3)
	assert.Equal(t, "GENERATED", batch.Status)

	var last dto.ScanResponse
	for i, box := range batch.Boxes {
		resp := srv.do(t, http.MethodPost, "/api/scans", srv.operator, dto.ScanRequest{BoxID: box.ID, Mode: "ON_WAREHOUSE"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decode(t, resp, &last)
		assert.Equal(t, "SCANNED", last.Box.Status)
		assert.True(t, last.CodeGenerated)
		if i < 2 {
			assert.Equal(t, "GENERATED", last.BatchStatus)
			assert.False(t, last.BatchPromoted)
		}
	}
	assert.Equal(t, "SCANNED", last.BatchStatus)
	assert.True(t, last.BatchPromoted)

	resp := srv.do(t, http.MethodGet, "/api/batches/"+batch.ID+"/histogram", srv.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist dto.HistogramResponse
	decode(t, resp, &hist)
	assert.Equal(t, 3, hist.Counts["SCANNED"])
	assert.Equal(t, 3, hist.Total)

	resp = srv.do(t, http.MethodGet, "/api/boxes/"+batch.Boxes[0].ID+"/scans", srv.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []dto.ScanEventResponse
	decode(t, resp, &events)
	require.Len(t, events, 1)
	assert.Equal(t, "ON_WAREHOUSE", events[0].Mode)

	resp = srv.do(t, http.MethodGet, "/api/boxes/"+batch.Boxes[0].ID+"/code", srv.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var code dto.BoxCodeResponse
	decode(t, resp, &code)
	assert.NotEmpty(t, code.Code)
}

func TestEscaneo_SinProductoIgualSeRegistra(t *testing.T) {
	srv := newServer(t)
	batch := srv.createBatch(t, "", 1)

	resp := srv.do(t, http.MethodPost, "/api/scans", srv.operator, dto.ScanRequest{BoxID: batch.Boxes[0].ID, Mode: "SHIPMENT"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.ScanResponse
	decode(t, resp, &out)
	assert.False(t, out.CodeGenerated)
	assert.NotEmpty(t, out.Warnings)
	assert.Equal(t, "SHIPPED", out.BatchStatus)
}

func TestEscaneo_ModoNoSoportado(t *testing.T) {
	srv := newServer(t)
	batch := srv.createBatch(t, "", 1)
	resp := srv.do(t, http.MethodPost, "/api/scans", srv.operator, dto.ScanRequest{BoxID: batch.Boxes[0].ID, Mode: "RETURN"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNSUPPORTED_SCAN_MODE", errorCode(t, resp))
}

func TestEscaneo_CajaInexistente(t *testing.T) {
	srv := newServer(t)
	resp := srv.do(t, http.MethodPost, "/api/scans", srv.operator, dto.ScanRequest{BoxID: "no-existe", Mode: "ON_WAREHOUSE"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestPartida_Inexistente404(t *testing.T) {
	srv := newServer(t)
	resp := srv.do(t, http.MethodGet, "/api/batches/no-existe", srv.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestPartidas_ListadoFiltraPorEstado(t *testing.T) {
	srv := newServer(t)
	srv.createBatch(t, "", 1)
	shipped := srv.createBatch(t, "", 1)
	resp := srv.do(t, http.MethodPost, "/api/scans", srv.operator, dto.ScanRequest{BoxID: shipped.Boxes[0].ID, Mode: "SHIPMENT"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodGet, "/api/batches?status=SHIPPED", srv.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.BatchListResponse
	decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, shipped.ID, list.Items[0].ID)
}

func TestPartidas_Mixtas(t *testing.T) {
	srv := newServer(t)
	batch := srv.createBatch(t, "", 2)
	resp := srv.do(t, http.MethodPost, "/api/scans", srv.operator, dto.ScanRequest{BoxID: batch.Boxes[0].ID, Mode: "ON_WAREHOUSE"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodGet, "/api/batches/mixed", srv.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []dto.BatchResponse
	decode(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, batch.ID, list[0].ID)
}

func TestPartida_CorreccionManualDeEstado(t *testing.T) {
	srv := newServer(t)
	batch := srv.createBatch(t, "", 1)

	resp := srv.do(t, http.MethodPut, "/api/batches/"+batch.ID+"/status", srv.admin, dto.OverrideStatusRequest{Status: "STICKED"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.BatchResponse
	decode(t, resp, &out)
	assert.Equal(t, "STICKED", out.Status)
	assert.Equal(t, batch.ZoneID, out.ZoneID)

	resp = srv.do(t, http.MethodPut, "/api/batches/"+batch.ID+"/status", srv.admin, dto.OverrideStatusRequest{Status: "PERDIDO"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestPartida_Eliminar(t *testing.T) {
	srv := newServer(t)
	batch := srv.createBatch(t, "", 2)

	resp := srv.do(t, http.MethodDelete, "/api/batches/"+batch.ID, srv.admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodGet, "/api/boxes/"+batch.Boxes[0].ID, srv.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// ── Etiquetas ─────────────────────────────────────────────────────────────────

func TestEtiquetas_PNGDeLaPartida(t *testing.T) {
	srv := newServer(t)
	product := srv.createProduct(t, "Limón")
	batch := srv.createBatch(t, product.ID, 2)

	resp := srv.do(t, http.MethodGet, fmt.Sprintf("/api/batches/%s/labels?format=png", batch.ID), srv.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "partida-"+batch.ID+".png")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))
}

func TestEtiquetas_PartidaSinProducto422(t *testing.T) {
	srv := newServer(t)
	batch := srv.createBatch(t, "", 1)
	resp := srv.do(t, http.MethodGet, "/api/batches/"+batch.ID+"/labels?format=png", srv.operator, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_LABEL_CONTENT", errorCode(t, resp))
}

func TestEtiquetas_FormatoDesconocido(t *testing.T) {
	srv := newServer(t)
	batch := srv.createBatch(t, "", 1)
	resp := srv.do(t, http.MethodGet, "/api/batches/"+batch.ID+"/labels?format=gif", srv.operator, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// ── Catálogos y lookups ───────────────────────────────────────────────────────

func TestZonas_Estadisticas(t *testing.T) {
	srv := newServer(t)
	srv.createBatch(t, "", 1)
	srv.createBatch(t, "", 1)

	resp := srv.do(t, http.MethodGet, "/api/zones/stats", srv.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats []dto.ZoneStatsResponse
	decode(t, resp, &stats)
	counts := map[string]int{}
	for _, s := range stats {
		counts[s.Name] = s.BatchCount
	}
	assert.Equal(t, 2, counts["RECEIVING"])
}

func TestLookups_TraduceSegunAcceptLanguage(t *testing.T) {
	srv := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/lookups/goods-status", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+srv.operator)
	req.Header.Set(fiber.HeaderAcceptLanguage, "en-US,en;q=0.9")
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.LookupResponse
	decode(t, resp, &out)
	assert.Equal(t, "en", out.Lang)
	assert.Len(t, out.Items, 4)
}

func TestRoles_AsignarPermisoHabilitaRuta(t *testing.T) {
	srv := newServer(t)

	resp := srv.do(t, http.MethodGet, "/api/permissions", srv.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var perms []dto.PermissionResponse
	decode(t, resp, &perms)

	resp = srv.do(t, http.MethodGet, "/api/roles", srv.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var roles []dto.RoleResponse
	decode(t, resp, &roles)

	var operator dto.RoleResponse
	for _, r := range roles {
		if r.Name == "OPERATOR" {
			operator = r
		}
	}
	require.NotEmpty(t, operator.ID)

	ids := make([]string, 0, len(operator.Permissions)+1)
	for _, p := range operator.Permissions {
		ids = append(ids, p.ID)
	}
	for _, p := range perms {
		if p.Name == "products:write" {
			ids = append(ids, p.ID)
		}
	}

	resp = srv.do(t, http.MethodPut, "/api/roles/"+operator.ID+"/permissions", srv.admin, dto.SetPermissionsRequest{PermissionIDs: ids})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodPost, "/api/products", srv.operator, dto.CreateProductRequest{Name: "Pomelo"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}
