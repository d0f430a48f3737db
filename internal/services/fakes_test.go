package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
	"felix-hub/internal/repositories"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/eventbus"
	"felix-hub/pkg/types"
)

// Ручные фейки репозиториев: хранят данные в памяти, транзакции не нужны.

type fakeTxManager struct{ calls int }

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.calls++
	return fn(nil)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *fakePublisher) Publish(_ context.Context, event eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name())
	}
	return out
}

// ---------- заказы ----------

type fakeOrderRepo struct {
	orders     map[uint64]entities.Order
	nextID     uint64
	lastFilter types.Filter
	byStatus   map[string]uint64
	today      uint64
	todaySince time.Time
	now        time.Time
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uint64]entities.Order), now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (r *fakeOrderRepo) put(order entities.Order) uint64 {
	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = r.now
	order.UpdatedAt = r.now
	r.orders[order.ID] = order
	return order.ID
}

func (r *fakeOrderRepo) GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	r.lastFilter = filter
	ids := make([]uint64, 0, len(r.orders))
	for id := range r.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]entities.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.orders[id])
	}
	return out, uint64(len(out)), nil
}

func (r *fakeOrderRepo) FindOrder(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	return &order, nil
}

func (r *fakeOrderRepo) FindOrderForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	return r.FindOrder(ctx, tx, id)
}

func (r *fakeOrderRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order entities.Order) (uint64, error) {
	return r.put(order), nil
}

func (r *fakeOrderRepo) UpdateOrder(ctx context.Context, tx pgx.Tx, order entities.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return apperrors.ErrOrderNotFound
	}
	order.UpdatedAt = r.now.Add(time.Minute)
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) DeleteOrder(ctx context.Context, tx pgx.Tx, id uint64) error {
	if _, ok := r.orders[id]; !ok {
		return apperrors.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) IncrementComments(ctx context.Context, tx pgx.Tx, id uint64) error {
	order, ok := r.orders[id]
	if !ok {
		return apperrors.ErrOrderNotFound
	}
	order.CommentsCount++
	r.orders[id] = order
	return nil
}

func (r *fakeOrderRepo) AddTotalTime(ctx context.Context, tx pgx.Tx, id uint64, minutes int) error {
	order, ok := r.orders[id]
	if !ok {
		return apperrors.ErrOrderNotFound
	}
	order.TotalTimeMinutes += minutes
	r.orders[id] = order
	return nil
}

func (r *fakeOrderRepo) CountByStatus(ctx context.Context) (map[string]uint64, error) {
	return r.byStatus, nil
}

func (r *fakeOrderRepo) CountCreatedSince(ctx context.Context, since time.Time) (uint64, error) {
	r.todaySince = since
	return r.today, nil
}

// ---------- каталог ----------

type fakePartRepo struct {
	parts  map[uint64]entities.Part
	nextID uint64
}

func newFakePartRepo(parts ...entities.Part) *fakePartRepo {
	r := &fakePartRepo{parts: make(map[uint64]entities.Part)}
	for _, p := range parts {
		r.parts[p.ID] = p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *fakePartRepo) GetParts(ctx context.Context, filter types.Filter) ([]entities.Part, error) {
	out := make([]entities.Part, 0, len(r.parts))
	for _, p := range r.parts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePartRepo) FindPart(ctx context.Context, id uint64) (*entities.Part, error) {
	p, ok := r.parts[id]
	if !ok {
		return nil, apperrors.ErrPartNotFound
	}
	return &p, nil
}

func (r *fakePartRepo) FindPartsByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.Part, error) {
	out := make(map[uint64]entities.Part, len(ids))
	for _, id := range ids {
		if p, ok := r.parts[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *fakePartRepo) CreatePart(ctx context.Context, tx pgx.Tx, part entities.Part) (uint64, error) {
	r.nextID++
	part.ID = r.nextID
	r.parts[part.ID] = part
	return part.ID, nil
}

func (r *fakePartRepo) UpdatePart(ctx context.Context, tx pgx.Tx, part entities.Part) error {
	if _, ok := r.parts[part.ID]; !ok {
		return apperrors.ErrPartNotFound
	}
	r.parts[part.ID] = part
	return nil
}

func (r *fakePartRepo) DeletePart(ctx context.Context, tx pgx.Tx, id uint64) error {
	if _, ok := r.parts[id]; !ok {
		return apperrors.ErrPartNotFound
	}
	delete(r.parts, id)
	return nil
}

type fakeCategoryRepo struct {
	categories map[uint64]entities.Category
	nextID     uint64
	reads      int
}

func newFakeCategoryRepo(categories ...entities.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: make(map[uint64]entities.Category)}
	for _, c := range categories {
		r.categories[c.ID] = c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *fakeCategoryRepo) GetCategories(ctx context.Context) ([]entities.Category, error) {
	r.reads++
	out := make([]entities.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCategoryRepo) FindCategory(ctx context.Context, id uint64) (*entities.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, apperrors.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) CreateCategory(ctx context.Context, tx pgx.Tx, category entities.Category) (uint64, error) {
	r.nextID++
	category.ID = r.nextID
	r.categories[category.ID] = category
	return category.ID, nil
}

func (r *fakeCategoryRepo) UpdateCategory(ctx context.Context, tx pgx.Tx, category entities.Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		return apperrors.ErrCategoryNotFound
	}
	r.categories[category.ID] = category
	return nil
}

func (r *fakeCategoryRepo) DeleteCategory(ctx context.Context, tx pgx.Tx, id uint64) error {
	if _, ok := r.categories[id]; !ok {
		return apperrors.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

// ---------- механики ----------

type fakeMechanicRepo struct {
	mechanics map[uint64]entities.Mechanic
	nextID    uint64
	passwords map[uint64]string
}

func newFakeMechanicRepo(mechanics ...entities.Mechanic) *fakeMechanicRepo {
	r := &fakeMechanicRepo{mechanics: make(map[uint64]entities.Mechanic), passwords: make(map[uint64]string)}
	for _, m := range mechanics {
		r.mechanics[m.ID] = m
		if m.ID > r.nextID {
			r.nextID = m.ID
		}
	}
	return r
}

func (r *fakeMechanicRepo) GetMechanics(ctx context.Context, filter types.Filter) ([]entities.Mechanic, error) {
	out := make([]entities.Mechanic, 0, len(r.mechanics))
	for _, m := range r.mechanics {
		if active, ok := filter.Filter["active"].(bool); ok && m.Active != active {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMechanicRepo) FindMechanic(ctx context.Context, id uint64) (*entities.Mechanic, error) {
	m, ok := r.mechanics[id]
	if !ok {
		return nil, apperrors.ErrMechanicNotFound
	}
	return &m, nil
}

func (r *fakeMechanicRepo) FindByEmail(ctx context.Context, email string) (*entities.Mechanic, error) {
	for _, m := range r.mechanics {
		if m.Email == email {
			found := m
			return &found, nil
		}
	}
	return nil, apperrors.ErrMechanicNotFound
}

func (r *fakeMechanicRepo) CreateMechanic(ctx context.Context, tx pgx.Tx, mechanic entities.Mechanic) (uint64, error) {
	if _, err := r.FindByEmail(ctx, mechanic.Email); err == nil {
		return 0, apperrors.ErrConflict
	}
	r.nextID++
	mechanic.ID = r.nextID
	r.mechanics[mechanic.ID] = mechanic
	return mechanic.ID, nil
}

func (r *fakeMechanicRepo) UpdateMechanic(ctx context.Context, tx pgx.Tx, mechanic entities.Mechanic) error {
	for id, m := range r.mechanics {
		if id != mechanic.ID && m.Email == mechanic.Email {
			return apperrors.ErrConflict
		}
	}
	current, ok := r.mechanics[mechanic.ID]
	if !ok {
		return apperrors.ErrMechanicNotFound
	}
	mechanic.PasswordHash = current.PasswordHash
	r.mechanics[mechanic.ID] = mechanic
	return nil
}

func (r *fakeMechanicRepo) UpdatePassword(ctx context.Context, tx pgx.Tx, id uint64, passwordHash string) error {
	m, ok := r.mechanics[id]
	if !ok {
		return apperrors.ErrMechanicNotFound
	}
	m.PasswordHash = passwordHash
	r.mechanics[id] = m
	r.passwords[id] = passwordHash
	return nil
}

func (r *fakeMechanicRepo) DeleteMechanic(ctx context.Context, tx pgx.Tx, id uint64) error {
	if _, ok := r.mechanics[id]; !ok {
		return apperrors.ErrMechanicNotFound
	}
	delete(r.mechanics, id)
	return nil
}

// ---------- назначения и история ----------

type assignmentRecord struct {
	MechanicID uint64
	Status     string
}

type fakeAssignmentRepo struct {
	assignments map[uint64]assignmentRecord
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[uint64]assignmentRecord)}
}

func (r *fakeAssignmentRepo) Upsert(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64, status string) error {
	r.assignments[orderID] = assignmentRecord{MechanicID: mechanicID, Status: status}
	return nil
}

func (r *fakeAssignmentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64, status string) error {
	if a, ok := r.assignments[orderID]; ok && a.MechanicID == mechanicID {
		a.Status = status
		r.assignments[orderID] = a
	}
	return nil
}

func (r *fakeAssignmentRepo) Remove(ctx context.Context, tx pgx.Tx, orderID uint64) error {
	delete(r.assignments, orderID)
	return nil
}

type fakeHistoryRepo struct {
	events []entities.OrderHistory
}

func (r *fakeHistoryRepo) CreateHistoryEvent(ctx context.Context, tx pgx.Tx, event entities.OrderHistory) error {
	event.ID = uint64(len(r.events) + 1)
	r.events = append(r.events, event)
	return nil
}

func (r *fakeHistoryRepo) GetByOrder(ctx context.Context, orderID uint64) ([]entities.OrderHistory, error) {
	var out []entities.OrderHistory
	for _, e := range r.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) byEvent(event string) []entities.OrderHistory {
	var out []entities.OrderHistory
	for _, e := range r.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// ---------- работа механика ----------

type fakeCommentRepo struct {
	comments []entities.OrderComment
}

func (r *fakeCommentRepo) CreateComment(ctx context.Context, tx pgx.Tx, comment entities.OrderComment) (*entities.OrderComment, error) {
	comment.ID = uint64(len(r.comments) + 1)
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, comment)
	return &comment, nil
}

func (r *fakeCommentRepo) GetComments(ctx context.Context, orderID uint64) ([]entities.OrderComment, error) {
	var out []entities.OrderComment
	for _, c := range r.comments {
		if c.OrderID == orderID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeCustomItemRepo struct {
	works []entities.CustomWorkItem
	parts []entities.CustomPartItem
}

func (r *fakeCustomItemRepo) CreateWork(ctx context.Context, tx pgx.Tx, item entities.CustomWorkItem) (*entities.CustomWorkItem, error) {
	item.ID = uint64(len(r.works) + 1)
	r.works = append(r.works, item)
	return &item, nil
}

func (r *fakeCustomItemRepo) CreatePart(ctx context.Context, tx pgx.Tx, item entities.CustomPartItem) (*entities.CustomPartItem, error) {
	item.ID = uint64(len(r.parts) + 1)
	r.parts = append(r.parts, item)
	return &item, nil
}

func (r *fakeCustomItemRepo) GetWorks(ctx context.Context, orderID uint64) ([]entities.CustomWorkItem, error) {
	return r.works, nil
}

func (r *fakeCustomItemRepo) GetParts(ctx context.Context, orderID uint64) ([]entities.CustomPartItem, error) {
	return r.parts, nil
}

// fakeTimeLogRepo повторяет ограничение БД: один активный таймер на механика.
type fakeTimeLogRepo struct {
	logs []entities.TimeLog
	sums map[bool]int
}

func (r *fakeTimeLogRepo) StartTimer(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64, startedAt time.Time) (*entities.TimeLog, error) {
	for _, l := range r.logs {
		if l.MechanicID == mechanicID && l.IsActive {
			return nil, apperrors.ErrTimerAlreadyRunning
		}
	}
	log := entities.TimeLog{
		ID: uint64(len(r.logs) + 1), OrderID: orderID, MechanicID: mechanicID,
		StartedAt: startedAt, IsActive: true, CreatedAt: startedAt,
	}
	r.logs = append(r.logs, log)
	return &log, nil
}

func (r *fakeTimeLogRepo) FindActiveForOrder(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64) (*entities.TimeLog, error) {
	for _, l := range r.logs {
		if l.OrderID == orderID && l.MechanicID == mechanicID && l.IsActive {
			found := l
			return &found, nil
		}
	}
	return nil, apperrors.ErrNoActiveTimer
}

func (r *fakeTimeLogRepo) FindActive(ctx context.Context, mechanicID uint64) (*entities.TimeLog, error) {
	for _, l := range r.logs {
		if l.MechanicID == mechanicID && l.IsActive {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeTimeLogRepo) StopTimer(ctx context.Context, tx pgx.Tx, id uint64, endedAt time.Time, durationMinutes int, notes *string) (*entities.TimeLog, error) {
	for i := range r.logs {
		if r.logs[i].ID == id {
			r.logs[i].EndedAt = &endedAt
			r.logs[i].DurationMinutes = &durationMinutes
			r.logs[i].Notes = notes
			r.logs[i].IsActive = false
			stopped := r.logs[i]
			return &stopped, nil
		}
	}
	return nil, apperrors.ErrNoActiveTimer
}

func (r *fakeTimeLogRepo) CreateManual(ctx context.Context, tx pgx.Tx, log entities.TimeLog) (*entities.TimeLog, error) {
	log.ID = uint64(len(r.logs) + 1)
	r.logs = append(r.logs, log)
	return &log, nil
}

func (r *fakeTimeLogRepo) GetByOrder(ctx context.Context, orderID uint64) ([]entities.TimeLog, error) {
	var out []entities.TimeLog
	for _, l := range r.logs {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeTimeLogRepo) GetHistory(ctx context.Context, mechanicID uint64, from, to time.Time) ([]entities.TimeLog, error) {
	var out []entities.TimeLog
	for _, l := range r.logs {
		if l.MechanicID == mechanicID && !l.IsActive && !l.StartedAt.Before(from) && l.StartedAt.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeTimeLogRepo) SumMinutes(ctx context.Context, mechanicID uint64, from *time.Time) (int, error) {
	return r.sums[from == nil], nil
}

// ---------- аналитика и уведомления ----------

type fakeAnalyticsRepo struct {
	rates    []dto.NotificationRateDTO
	byStatus map[string]int
	stale    int
	counts   repositories.MechanicOrderCounts
}

func (r *fakeAnalyticsRepo) OrdersPerDay(ctx context.Context, since time.Time) ([]dto.DailyOrdersDTO, error) {
	return nil, nil
}

func (r *fakeAnalyticsRepo) StatusChanges(ctx context.Context, since time.Time) ([]dto.StatusChangeDTO, error) {
	return nil, nil
}

func (r *fakeAnalyticsRepo) NotificationRates(ctx context.Context, since time.Time) ([]dto.NotificationRateDTO, error) {
	return append([]dto.NotificationRateDTO(nil), r.rates...), nil
}

func (r *fakeAnalyticsRepo) MechanicOrderCounts(ctx context.Context, mechanicID uint64, completedSince time.Time) (*repositories.MechanicOrderCounts, error) {
	counts := r.counts
	return &counts, nil
}

func (r *fakeAnalyticsRepo) OrdersByStatusSince(ctx context.Context, since time.Time) (map[string]int, error) {
	return r.byStatus, nil
}

func (r *fakeAnalyticsRepo) CountStaleOrders(ctx context.Context, status string, createdBefore time.Time) (int, error) {
	return r.stale, nil
}

type fakeNotificationLogRepo struct {
	failures []entities.NotificationLog
}

func (r *fakeNotificationLogRepo) Create(ctx context.Context, log entities.NotificationLog) error {
	return nil
}

func (r *fakeNotificationLogRepo) GetFailures(ctx context.Context, since time.Time, limit int) ([]entities.NotificationLog, error) {
	if limit > 0 && len(r.failures) > limit {
		return r.failures[:limit], nil
	}
	return r.failures, nil
}

// ---------- кеш и файлы ----------

type fakeCache struct {
	data map[string]string
	ttl  map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string), ttl: make(map[string]time.Duration)}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	default:
		c.data[key] = fmt.Sprint(v)
	}
	c.ttl[key] = expiration
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
		delete(c.ttl, k)
	}
	return nil
}

func (c *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	fmt.Sscan(c.data[key], &n)
	n++
	c.data[key] = fmt.Sprint(n)
	return n, nil
}

func (c *fakeCache) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	c.ttl[key] = expiration
	return true, nil
}

func (c *fakeCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.ttl[key], nil
}

type fakeFileStorage struct {
	saved   []string
	deleted []string
}

func (s *fakeFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	url := fmt.Sprintf("/uploads/%s/%d.jpg", prefix, len(s.saved)+1)
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *fakeFileStorage) Delete(fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}
