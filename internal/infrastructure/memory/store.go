// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORAGE_DRIVER=memory y como doble de prueba en los tests de aplicación y HTTP.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	appwarehouse "github.com/jhoicas/citrus-stock/internal/application/warehouse"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

var _ appwarehouse.TxRunner = (*Store)(nil)

// Store estado compartido por todos los repositorios en memoria.
// Las entidades se guardan como copias: mutar un valor devuelto no cambia el store.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	boxes       map[string]*entity.Box
	batches     map[string]*entity.ProductBatch
	zones       map[string]*entity.Zone
	events      []*entity.ScanEvent
	products    map[string]*entity.Product
	suppliers   map[string]*entity.Supplier
	users       map[string]*entity.User
	roles       map[string]*entity.Role
	permissions map[string]*entity.Permission
	rolePerms   map[string][]string
	tokens      map[string]*entity.RefreshToken

	seq int64 // orden de inserción para listados estables
	ord map[string]int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		boxes:       make(map[string]*entity.Box),
		batches:     make(map[string]*entity.ProductBatch),
		zones:       make(map[string]*entity.Zone),
		products:    make(map[string]*entity.Product),
		suppliers:   make(map[string]*entity.Supplier),
		users:       make(map[string]*entity.User),
		roles:       make(map[string]*entity.Role),
		permissions: make(map[string]*entity.Permission),
		rolePerms:   make(map[string][]string),
		tokens:      make(map[string]*entity.RefreshToken),
		ord:         make(map[string]int64),
	}
}

// Run ejecuta fn de forma serializada respecto de otras transacciones. Si fn falla se
// deshacen solo las escrituras hechas con los repositorios de tx; lo escrito fuera de la
// transacción se conserva.
func (s *Store) Run(ctx context.Context, fn func(tx appwarehouse.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	log := &txLog{}
	err := fn(appwarehouse.TxRepos{
		Boxes:      &BoxRepo{s: s, tx: log},
		Batches:    &ProductBatchRepo{s: s, tx: log},
		Zones:      &ZoneRepo{s: s, tx: log},
		ScanEvents: &ScanEventRepo{s: s, tx: log},
	})
	if err != nil {
		s.rollback(log)
		return err
	}
	return nil
}

// txLog acciones para deshacer las escrituras de una transacción en curso.
// Un *txLog nil significa escritura fuera de transacción.
type txLog struct {
	undo []func()
}

func (l *txLog) add(fn func()) {
	if l != nil {
		l.undo = append(l.undo, fn)
	}
}

func (s *Store) rollback(l *txLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(l.undo) - 1; i >= 0; i-- {
		l.undo[i]()
	}
}

// put escribe m[id] = v, o borra la entrada si v es nil, y anota en l cómo deshacerlo.
// El deshacer no pisa la entrada si otra escritura la cambió después. Requiere s.mu tomado.
func put[T any](s *Store, l *txLog, m map[string]*T, id string, v *T) {
	before, existed := m[id]
	if v == nil {
		delete(m, id)
	} else {
		m[id] = v
		s.track(id)
	}
	l.add(func() {
		cur, ok := m[id]
		if (v == nil && ok) || (v != nil && (!ok || cur != v)) {
			return
		}
		if existed {
			m[id] = before
			return
		}
		delete(m, id)
		delete(s.ord, id)
	})
}

// appendEvent agrega e al log de escaneos. Requiere s.mu tomado.
func (s *Store) appendEvent(l *txLog, e *entity.ScanEvent) {
	s.events = append(s.events, e)
	l.add(func() {
		for i, cur := range s.events {
			if cur == e {
				s.events = append(s.events[:i:i], s.events[i+1:]...)
				return
			}
		}
	})
}

// track registra el orden de inserción de id. Requiere s.mu tomado.
func (s *Store) track(id string) {
	if _, ok := s.ord[id]; ok {
		return
	}
	s.seq++
	s.ord[id] = s.seq
}

// sortByInsertion ordena ids por orden de inserción. Requiere s.mu tomado.
func (s *Store) sortByInsertion(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return s.ord[ids[i]] < s.ord[ids[j]] })
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneBox(b *entity.Box) *entity.Box {
	c := *b
	c.ScannedAt = cloneTime(b.ScannedAt)
	c.ScannedBy = cloneString(b.ScannedBy)
	return &c
}

func cloneBatch(b *entity.ProductBatch) *entity.ProductBatch {
	c := *b
	c.Boxes = nil
	return &c
}
