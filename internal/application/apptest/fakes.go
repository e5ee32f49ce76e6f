// Package apptest 提供应用服务测试用的内存仓储
//
// 所有实现都是单线程内存版，仅供_test.go使用，不做并发保护。
package apptest

import (
	"context"
	"time"

	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/domain/order"
	"github.com/biblioteka/backend/internal/domain/user"
)

// FakeTx 直通事务管理器：直接执行fn，不做任何事务语义
type FakeTx struct{}

// Transaction 直接执行fn
func (FakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// =========================================
// 图书仓储
// =========================================

// FakeBookRepo 内存图书仓储
type FakeBookRepo struct {
	ByID   map[uint]*book.Book
	nextID uint
}

// NewFakeBookRepo 创建内存图书仓储
func NewFakeBookRepo() *FakeBookRepo {
	return &FakeBookRepo{ByID: make(map[uint]*book.Book)}
}

// Add 直接放入一本图书（测试预置数据用）
func (r *FakeBookRepo) Add(b *book.Book) *book.Book {
	if b.ID == 0 {
		r.nextID++
		b.ID = r.nextID
	} else if b.ID > r.nextID {
		r.nextID = b.ID
	}
	r.ByID[b.ID] = b
	return b
}

func (r *FakeBookRepo) Create(_ context.Context, b *book.Book) error {
	r.Add(b)
	return nil
}

func (r *FakeBookRepo) FindByID(_ context.Context, id uint) (*book.Book, error) {
	b, ok := r.ByID[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b, nil
}

func (r *FakeBookRepo) FindByIDs(_ context.Context, ids []uint) (map[uint]*book.Book, error) {
	out := make(map[uint]*book.Book, len(ids))
	for _, id := range ids {
		if b, ok := r.ByID[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

func (r *FakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *FakeBookRepo) Update(_ context.Context, b *book.Book) error {
	if _, ok := r.ByID[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	r.ByID[b.ID] = b
	return nil
}

func (r *FakeBookRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.ByID[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.ByID, id)
	return nil
}

func (r *FakeBookRepo) ReleaseByRenter(_ context.Context, userID uint) error {
	for _, b := range r.ByID {
		if b.RentedByUser(userID) {
			b.RentedBy = nil
		}
	}
	return nil
}

func (r *FakeBookRepo) List(_ context.Context, _ book.ListParams) ([]*book.Book, int64, error) {
	out := make([]*book.Book, 0, len(r.ByID))
	for _, b := range r.ByID {
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

// =========================================
// 订单仓储
// =========================================

// FakeOrderRepo 内存订单仓储
type FakeOrderRepo struct {
	ByID   map[uint]*order.Order
	nextID uint
}

// NewFakeOrderRepo 创建内存订单仓储
func NewFakeOrderRepo() *FakeOrderRepo {
	return &FakeOrderRepo{ByID: make(map[uint]*order.Order)}
}

// Add 直接放入一个订单（测试预置数据用）
func (r *FakeOrderRepo) Add(o *order.Order) *order.Order {
	if o.ID == 0 {
		r.nextID++
		o.ID = r.nextID
	} else if o.ID > r.nextID {
		r.nextID = o.ID
	}
	r.ByID[o.ID] = o
	return o
}

func (r *FakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.Add(o)
	return nil
}

func (r *FakeOrderRepo) FindByID(_ context.Context, id uint) (*order.Order, error) {
	o, ok := r.ByID[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (r *FakeOrderRepo) Update(_ context.Context, o *order.Order) error {
	if _, ok := r.ByID[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	r.ByID[o.ID] = o
	return nil
}

func (r *FakeOrderRepo) List(_ context.Context, params order.ListParams) ([]*order.Order, int64, error) {
	out := make([]*order.Order, 0, len(r.ByID))
	for _, o := range r.ByID {
		if params.UserID != nil && o.UserID != *params.UserID {
			continue
		}
		if params.BookID != nil && (o.BookID == nil || *o.BookID != *params.BookID) {
			continue
		}
		if params.Status != nil && o.Status != *params.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *FakeOrderRepo) FindActiveByUserID(_ context.Context, userID uint) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range r.ByID {
		if o.UserID == userID && o.IsActive() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *FakeOrderRepo) BackfillSnapshots(_ context.Context, bookID uint, snap *order.Snapshot) error {
	for _, o := range r.ByID {
		if o.BookID != nil && *o.BookID == bookID {
			o.EnsureSnapshot(snap)
		}
	}
	return nil
}

func (r *FakeOrderRepo) CloseActiveByBookID(_ context.Context, bookID uint, at time.Time, status order.Status) error {
	for _, o := range r.ByID {
		if o.BookID != nil && *o.BookID == bookID && o.IsActive() {
			o.ReturnedAt = &at
			o.Status = status
		}
	}
	return nil
}

func (r *FakeOrderRepo) CloseActiveByUserID(_ context.Context, userID uint, at time.Time, status order.Status) error {
	for _, o := range r.ByID {
		if o.UserID == userID && o.IsActive() {
			o.ReturnedAt = &at
			o.Status = status
		}
	}
	return nil
}

func (r *FakeOrderRepo) ClearBookRef(_ context.Context, bookID uint) error {
	for _, o := range r.ByID {
		if o.BookID != nil && *o.BookID == bookID {
			o.BookID = nil
		}
	}
	return nil
}

func (r *FakeOrderRepo) DeleteByUserID(_ context.Context, userID uint) error {
	for id, o := range r.ByID {
		if o.UserID == userID {
			delete(r.ByID, id)
		}
	}
	return nil
}

// =========================================
// 用户仓储
// =========================================

// FakeUserRepo 内存用户仓储
type FakeUserRepo struct {
	ByID   map[uint]*user.User
	nextID uint
}

// NewFakeUserRepo 创建内存用户仓储
func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{ByID: make(map[uint]*user.User)}
}

// Add 直接放入一个用户（测试预置数据用）
func (r *FakeUserRepo) Add(u *user.User) *user.User {
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	} else if u.ID > r.nextID {
		r.nextID = u.ID
	}
	r.ByID[u.ID] = u
	return u
}

func (r *FakeUserRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range r.ByID {
		if existing.Email == u.Email {
			return user.ErrEmailDuplicate
		}
	}
	r.Add(u)
	return nil
}

func (r *FakeUserRepo) FindByID(_ context.Context, id uint) (*user.User, error) {
	u, ok := r.ByID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *FakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.ByID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *FakeUserRepo) Update(_ context.Context, u *user.User) error {
	if _, ok := r.ByID[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.ByID[u.ID] = u
	return nil
}

func (r *FakeUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.ByID[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.ByID, id)
	return nil
}

func (r *FakeUserRepo) List(_ context.Context, _ user.ListParams) ([]*user.User, int64, error) {
	out := make([]*user.User, 0, len(r.ByID))
	for _, u := range r.ByID {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

// =========================================
// 活动日志仓储
// =========================================

// FakeActivityRepo 内存活动日志仓储
type FakeActivityRepo struct {
	Records []*activity.Activity
}

// NewFakeActivityRepo 创建内存活动日志仓储
func NewFakeActivityRepo() *FakeActivityRepo {
	return &FakeActivityRepo{}
}

func (r *FakeActivityRepo) Create(_ context.Context, a *activity.Activity) error {
	a.ID = uint(len(r.Records) + 1)
	r.Records = append(r.Records, a)
	return nil
}

func (r *FakeActivityRepo) List(_ context.Context, _ activity.ListParams) ([]*activity.Activity, int64, error) {
	return r.Records, int64(len(r.Records)), nil
}

// Types 返回已记录的活动类型序列（断言用）
func (r *FakeActivityRepo) Types() []activity.Type {
	out := make([]activity.Type, 0, len(r.Records))
	for _, a := range r.Records {
		out = append(out, a.Type)
	}
	return out
}
