package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bijouterie/internal/models"
)

// memoryDB keeps every document in process. All access goes through
// acquire, which takes the single lock unless ctx already runs inside a
// WithTransaction call on the same db.
type memoryDB struct {
	mu          sync.Mutex
	collections []models.Collection
	products    []models.Product
	orders      []models.Order
	users       []models.User
	now         func() time.Time
}

type memoryTxKey struct{}

// NewMemory returns a Store that keeps data in process. Transactions are
// atomic: a failing function restores the state it started from.
func NewMemory() Store {
	db := &memoryDB{now: func() time.Time { return time.Now().UTC() }}
	return Store{
		Driver:      "memory",
		Collections: &memoryCollections{db: db},
		Products:    &memoryProducts{db: db},
		Orders:      &memoryOrders{db: db},
		Users:       &memoryUsers{db: db},
		Tx:          &memoryTransactor{db: db},
		Ping:        func(context.Context) error { return nil },
	}
}

func (db *memoryDB) acquire(ctx context.Context) func() {
	if owner, ok := ctx.Value(memoryTxKey{}).(*memoryDB); ok && owner == db {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

type memoryTransactor struct {
	db *memoryDB
}

func (t *memoryTransactor) Atomic() bool {
	return true
}

func (t *memoryTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	release := t.db.acquire(ctx)
	defer release()

	products := append([]models.Product(nil), t.db.products...)
	orders := append([]models.Order(nil), t.db.orders...)

	if err := fn(context.WithValue(ctx, memoryTxKey{}, t.db)); err != nil {
		t.db.products = products
		t.db.orders = orders
		return err
	}
	return nil
}

type memoryCollections struct {
	db *memoryDB
}

func (s *memoryCollections) List(ctx context.Context) ([]models.Collection, error) {
	defer s.db.acquire(ctx)()

	out := make([]models.Collection, 0, len(s.db.collections))
	for i := len(s.db.collections) - 1; i >= 0; i-- {
		out = append(out, s.db.collections[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryCollections) GetBySlug(ctx context.Context, slug string) (models.Collection, error) {
	defer s.db.acquire(ctx)()

	if i := s.indexBySlug(slug); i >= 0 {
		return s.db.collections[i], nil
	}
	return models.Collection{}, ErrNotFound
}

func (s *memoryCollections) GetByID(ctx context.Context, id primitive.ObjectID) (models.Collection, error) {
	defer s.db.acquire(ctx)()

	for _, c := range s.db.collections {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Collection{}, ErrNotFound
}

func (s *memoryCollections) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Collection, error) {
	defer s.db.acquire(ctx)()

	wanted := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]models.Collection, 0, len(ids))
	for _, c := range s.db.collections {
		if _, ok := wanted[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memoryCollections) Create(ctx context.Context, collection *models.Collection) error {
	defer s.db.acquire(ctx)()

	for _, c := range s.db.collections {
		if c.Name == collection.Name || c.Slug == collection.Slug {
			return ErrDuplicate
		}
	}

	now := s.db.now()
	collection.ID = primitive.NewObjectID()
	collection.CreatedAt = now
	collection.UpdatedAt = now
	s.db.collections = append(s.db.collections, *collection)
	return nil
}

func (s *memoryCollections) Update(ctx context.Context, slug string, update CollectionUpdate) (models.Collection, error) {
	defer s.db.acquire(ctx)()

	i := s.indexBySlug(slug)
	if i < 0 {
		return models.Collection{}, ErrNotFound
	}

	next := s.db.collections[i]
	if update.Name != nil {
		next.Name = *update.Name
	}
	if update.Description != nil {
		next.Description = *update.Description
	}
	if update.Image != nil {
		next.Image = *update.Image
	}
	if update.Slug != nil {
		next.Slug = *update.Slug
	}
	for j, c := range s.db.collections {
		if j != i && (c.Name == next.Name || c.Slug == next.Slug) {
			return models.Collection{}, ErrDuplicate
		}
	}

	next.UpdatedAt = s.db.now()
	s.db.collections[i] = next
	return next, nil
}

func (s *memoryCollections) Delete(ctx context.Context, slug string) error {
	defer s.db.acquire(ctx)()

	i := s.indexBySlug(slug)
	if i < 0 {
		return ErrNotFound
	}
	s.db.collections = append(s.db.collections[:i], s.db.collections[i+1:]...)
	return nil
}

func (s *memoryCollections) DeleteAll(ctx context.Context) error {
	defer s.db.acquire(ctx)()

	s.db.collections = nil
	return nil
}

func (s *memoryCollections) Count(ctx context.Context) (int64, error) {
	defer s.db.acquire(ctx)()

	return int64(len(s.db.collections)), nil
}

func (s *memoryCollections) indexBySlug(slug string) int {
	for i, c := range s.db.collections {
		if c.Slug == slug {
			return i
		}
	}
	return -1
}

type memoryProducts struct {
	db *memoryDB
}

func (s *memoryProducts) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	defer s.db.acquire(ctx)()

	out := make([]models.Product, 0, len(s.db.products))
	for i := len(s.db.products) - 1; i >= 0; i-- {
		p := s.db.products[i]
		if filter.CollectionID != nil && p.CollectionID != *filter.CollectionID {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryProducts) GetBySlug(ctx context.Context, slug string) (models.Product, error) {
	defer s.db.acquire(ctx)()

	if i := s.indexWhere(func(p models.Product) bool { return p.Slug == slug }); i >= 0 {
		return cloneProduct(s.db.products[i]), nil
	}
	return models.Product{}, ErrNotFound
}

func (s *memoryProducts) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	defer s.db.acquire(ctx)()

	if i := s.indexWhere(func(p models.Product) bool { return p.ID == id }); i >= 0 {
		return cloneProduct(s.db.products[i]), nil
	}
	return models.Product{}, ErrNotFound
}

func (s *memoryProducts) Create(ctx context.Context, product *models.Product) error {
	defer s.db.acquire(ctx)()

	if s.indexWhere(func(p models.Product) bool { return p.Slug == product.Slug }) >= 0 {
		return ErrDuplicate
	}

	normalizeImages(product)
	if product.CreatedAt.IsZero() {
		product.CreatedAt = s.db.now()
	}
	product.UpdatedAt = product.CreatedAt
	product.ID = primitive.NewObjectID()
	s.db.products = append(s.db.products, cloneProduct(*product))
	return nil
}

func (s *memoryProducts) Update(ctx context.Context, slug string, update ProductUpdate) (models.Product, error) {
	defer s.db.acquire(ctx)()

	i := s.indexWhere(func(p models.Product) bool { return p.Slug == slug })
	if i < 0 {
		return models.Product{}, ErrNotFound
	}

	next := cloneProduct(s.db.products[i])
	if update.Name != nil {
		next.Name = *update.Name
	}
	if update.Description != nil {
		next.Description = *update.Description
	}
	if update.Price != nil {
		next.Price = *update.Price
	}
	if update.Quantity != nil {
		next.Quantity = *update.Quantity
	}
	if update.Images != nil {
		next.Images = append([]string{}, (*update.Images)...)
	}
	if update.CollectionID != nil {
		next.CollectionID = *update.CollectionID
	}
	if update.Slug != nil {
		if j := s.indexWhere(func(p models.Product) bool { return p.Slug == *update.Slug }); j >= 0 && j != i {
			return models.Product{}, ErrDuplicate
		}
		next.Slug = *update.Slug
	}

	next.UpdatedAt = s.db.now()
	s.db.products[i] = next
	return cloneProduct(next), nil
}

func (s *memoryProducts) Delete(ctx context.Context, slug string) error {
	defer s.db.acquire(ctx)()

	i := s.indexWhere(func(p models.Product) bool { return p.Slug == slug })
	if i < 0 {
		return ErrNotFound
	}
	s.db.products = append(s.db.products[:i], s.db.products[i+1:]...)
	return nil
}

func (s *memoryProducts) DeleteAll(ctx context.Context) error {
	defer s.db.acquire(ctx)()

	s.db.products = nil
	return nil
}

func (s *memoryProducts) Count(ctx context.Context) (int64, error) {
	defer s.db.acquire(ctx)()

	return int64(len(s.db.products)), nil
}

func (s *memoryProducts) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	defer s.db.acquire(ctx)()

	i := s.indexWhere(func(p models.Product) bool { return p.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	if s.db.products[i].Quantity < quantity {
		return ErrInsufficientStock
	}
	s.db.products[i].Quantity -= quantity
	s.db.products[i].UpdatedAt = s.db.now()
	return nil
}

func (s *memoryProducts) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	defer s.db.acquire(ctx)()

	i := s.indexWhere(func(p models.Product) bool { return p.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.db.products[i].Quantity += quantity
	s.db.products[i].UpdatedAt = s.db.now()
	return nil
}

func (s *memoryProducts) indexWhere(match func(models.Product) bool) int {
	for i, p := range s.db.products {
		if match(p) {
			return i
		}
	}
	return -1
}

func cloneProduct(p models.Product) models.Product {
	p.Images = append([]string{}, p.Images...)
	return p
}

type memoryOrders struct {
	db *memoryDB
}

func (s *memoryOrders) List(ctx context.Context) ([]models.Order, error) {
	defer s.db.acquire(ctx)()

	return s.sorted(), nil
}

func (s *memoryOrders) Recent(ctx context.Context, limit int64) ([]models.Order, error) {
	defer s.db.acquire(ctx)()

	out := s.sorted()
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryOrders) sorted() []models.Order {
	out := make([]models.Order, 0, len(s.db.orders))
	for i := len(s.db.orders) - 1; i >= 0; i-- {
		out = append(out, cloneOrder(s.db.orders[i]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memoryOrders) GetByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	defer s.db.acquire(ctx)()

	if i := s.index(id); i >= 0 {
		return cloneOrder(s.db.orders[i]), nil
	}
	return models.Order{}, ErrNotFound
}

func (s *memoryOrders) Create(ctx context.Context, order *models.Order) error {
	defer s.db.acquire(ctx)()

	now := s.db.now()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now
	s.db.orders = append(s.db.orders, cloneOrder(*order))
	return nil
}

func (s *memoryOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (models.Order, error) {
	defer s.db.acquire(ctx)()

	i := s.index(id)
	if i < 0 {
		return models.Order{}, ErrNotFound
	}
	s.db.orders[i].Status = status
	s.db.orders[i].UpdatedAt = s.db.now()
	return cloneOrder(s.db.orders[i]), nil
}

func (s *memoryOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer s.db.acquire(ctx)()

	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.db.orders = append(s.db.orders[:i], s.db.orders[i+1:]...)
	return nil
}

func (s *memoryOrders) Count(ctx context.Context) (int64, error) {
	defer s.db.acquire(ctx)()

	return int64(len(s.db.orders)), nil
}

func (s *memoryOrders) Revenue(ctx context.Context, statuses []models.OrderStatus) (float64, error) {
	defer s.db.acquire(ctx)()

	total := decimal.Zero
	for _, o := range s.db.orders {
		if hasStatus(statuses, o.Status) {
			total = total.Add(decimal.NewFromFloat(o.Total))
		}
	}
	return total.InexactFloat64(), nil
}

func (s *memoryOrders) RevenueSeries(ctx context.Context, statuses []models.OrderStatus, since time.Time, period Period) ([]models.RevenuePoint, error) {
	defer s.db.acquire(ctx)()

	buckets := map[string]decimal.Decimal{}
	for _, o := range s.db.orders {
		if o.CreatedAt.Before(since) || !hasStatus(statuses, o.Status) {
			continue
		}
		key := o.CreatedAt.UTC().Format(period.Layout())
		buckets[key] = buckets[key].Add(decimal.NewFromFloat(o.Total))
	}

	points := make([]models.RevenuePoint, 0, len(buckets))
	for key, total := range buckets {
		points = append(points, models.RevenuePoint{ID: key, Total: total.InexactFloat64()})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].ID < points[j].ID })
	return points, nil
}

func (s *memoryOrders) index(id primitive.ObjectID) int {
	for i, o := range s.db.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func hasStatus(statuses []models.OrderStatus, status models.OrderStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type memoryUsers struct {
	db *memoryDB
}

func (s *memoryUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer s.db.acquire(ctx)()

	for _, u := range s.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *memoryUsers) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	defer s.db.acquire(ctx)()

	for _, u := range s.db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *memoryUsers) Create(ctx context.Context, user *models.User) error {
	defer s.db.acquire(ctx)()

	for _, u := range s.db.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}

	now := s.db.now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.db.users = append(s.db.users, *user)
	return nil
}

func (s *memoryUsers) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, mustChange bool) error {
	defer s.db.acquire(ctx)()

	for i := range s.db.users {
		if s.db.users[i].ID == id {
			s.db.users[i].PasswordHash = hash
			s.db.users[i].MustChangePassword = mustChange
			s.db.users[i].UpdatedAt = s.db.now()
			return nil
		}
	}
	return ErrNotFound
}
