package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/citrus-stock/internal/application/auth"
	"github.com/jhoicas/citrus-stock/internal/application/labels"
	"github.com/jhoicas/citrus-stock/internal/application/usecase"
	"github.com/jhoicas/citrus-stock/internal/application/warehouse"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

// activityInterval cada cuánto se persiste last_active_at por usuario.
const activityInterval = time.Minute

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	BatchUC      *warehouse.BatchUseCase
	BoxUC        *warehouse.BoxUseCase
	ScanUC       *warehouse.ScanUseCase
	StatusEngine *warehouse.StatusEngine
	LabelUC      *labels.UseCase
	ProductUC    *usecase.ProductUseCase
	SupplierUC   *usecase.SupplierUseCase
	ZoneUC       *usecase.ZoneUseCase
	UserUC       *usecase.UserUseCase
	RoleUC       *usecase.RoleUseCase
	PermissionUC *usecase.PermissionUseCase
	LookupUC     *usecase.LookupUseCase
	Enforcer     PermissionChecker
	JWTSecret    string
	Log          *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), ActivityTracker(deps.UserUC, activityInterval, deps.Log))
	protected.Post("/auth/logout", authHandler.Logout)

	read := func(resource string) fiber.Handler {
		return RequirePermission(deps.Enforcer, resource, entity.ActionRead)
	}
	write := func(resource string) fiber.Handler {
		return RequirePermission(deps.Enforcer, resource, entity.ActionWrite)
	}

	batchHandler := NewBatchHandler(deps.BatchUC, deps.StatusEngine)
	boxHandler := NewBoxHandler(deps.BoxUC)
	labelHandler := NewLabelHandler(deps.LabelUC)

	// Batches
	batches := protected.Group("/batches")
	batches.Post("/", write("batches"), batchHandler.Create)
	batches.Get("/", read("batches"), batchHandler.List)
	batches.Get("/mixed", read("batches"), batchHandler.Mixed)
	batches.Get("/:id", read("batches"), batchHandler.GetByID)
	batches.Put("/:id", write("batches"), batchHandler.Update)
	batches.Put("/:id/status", write("batches"), batchHandler.OverrideStatus)
	batches.Delete("/:id", write("batches"), batchHandler.Delete)
	batches.Get("/:id/histogram", read("batches"), batchHandler.Histogram)
	batches.Post("/:id/reconcile", write("batches"), batchHandler.Reconcile)
	batches.Get("/:id/boxes", read("boxes"), boxHandler.ListByBatch)
	batches.Get("/:id/labels", read("labels"), labelHandler.ForBatch)

	// Boxes
	boxes := protected.Group("/boxes")
	boxes.Post("/", write("boxes"), boxHandler.Create)
	boxes.Get("/:id", read("boxes"), boxHandler.GetByID)
	boxes.Put("/:id", write("boxes"), boxHandler.Update)
	boxes.Delete("/:id", write("boxes"), boxHandler.Delete)
	boxes.Get("/:id/code", read("boxes"), boxHandler.Code)
	boxes.Get("/:id/scans", read("boxes"), boxHandler.Scans)
	boxes.Get("/:id/labels", read("labels"), labelHandler.ForBox)

	// Scans
	scanHandler := NewScanHandler(deps.ScanUC)
	protected.Post("/scans", write("scans"), scanHandler.Scan)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", write("products"), productHandler.Create)
	products.Get("/", read("products"), productHandler.List)
	products.Get("/:id", read("products"), productHandler.GetByID)
	products.Put("/:id", write("products"), productHandler.Update)
	products.Delete("/:id", write("products"), productHandler.Delete)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", write("suppliers"), supplierHandler.Create)
	suppliers.Get("/", read("suppliers"), supplierHandler.List)
	suppliers.Get("/:id", read("suppliers"), supplierHandler.GetByID)
	suppliers.Put("/:id", write("suppliers"), supplierHandler.Update)
	suppliers.Delete("/:id", write("suppliers"), supplierHandler.Delete)

	// Zones
	zones := protected.Group("/zones")
	zoneHandler := NewZoneHandler(deps.ZoneUC)
	zones.Post("/", write("zones"), zoneHandler.Create)
	zones.Get("/", read("zones"), zoneHandler.List)
	zones.Get("/stats", read("zones"), zoneHandler.Stats)
	zones.Get("/:id", read("zones"), zoneHandler.GetByID)
	zones.Put("/:id", write("zones"), zoneHandler.Update)
	zones.Delete("/:id", write("zones"), zoneHandler.Delete)

	// Users
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/me", userHandler.Me)
	users.Post("/", write("users"), userHandler.Create)
	users.Get("/", read("users"), userHandler.List)
	users.Get("/:id", read("users"), userHandler.GetByID)
	users.Put("/:id", write("users"), userHandler.Update)
	users.Delete("/:id", write("users"), userHandler.Delete)

	// Roles y permisos
	roleHandler := NewRoleHandler(deps.RoleUC, deps.PermissionUC)
	roles := protected.Group("/roles")
	roles.Post("/", write("roles"), roleHandler.CreateRole)
	roles.Get("/", read("roles"), roleHandler.ListRoles)
	roles.Get("/:id", read("roles"), roleHandler.GetRole)
	roles.Put("/:id", write("roles"), roleHandler.UpdateRole)
	roles.Delete("/:id", write("roles"), roleHandler.DeleteRole)
	roles.Put("/:id/permissions", write("roles"), roleHandler.SetPermissions)

	perms := protected.Group("/permissions")
	perms.Post("/", write("roles"), roleHandler.CreatePermission)
	perms.Get("/", read("roles"), roleHandler.ListPermissions)
	perms.Get("/:id", read("roles"), roleHandler.GetPermission)
	perms.Put("/:id", write("roles"), roleHandler.UpdatePermission)
	perms.Delete("/:id", write("roles"), roleHandler.DeletePermission)

	// Lookups (solo autenticación)
	lookups := protected.Group("/lookups")
	lookupHandler := NewLookupHandler(deps.LookupUC)
	lookups.Get("/goods-status", lookupHandler.GoodsStatuses)
	lookups.Get("/scan-modes", lookupHandler.ScanModes)
	lookups.Get("/zones", lookupHandler.Zones)
}
