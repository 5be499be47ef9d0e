package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
)

// fakeRepo 内存仓储,按邮箱索引
type fakeRepo struct {
	users  map[string]*User
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User), nextID: 1}
}

func (r *fakeRepo) Create(ctx context.Context, u *User) error {
	if _, ok := r.users[u.Email]; ok {
		return ErrEmailDuplicate
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.Email] = u
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeRepo) Update(ctx context.Context, u *User) error {
	r.users[u.Email] = u
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uint) error {
	for email, u := range r.users {
		if u.ID == id {
			delete(r.users, email)
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *fakeRepo) List(ctx context.Context, page, pageSize int) ([]*User, int64, error) {
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

// TestRegister 注册:新用户为PENDING、默认启用,密码不落明文
func TestRegister(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, "张三", "zhangsan@example.com", "passw0rd123")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, u.Status)
	assert.Equal(t, RoleUser, u.Role)
	assert.True(t, u.Enabled)
	assert.NotEqual(t, "passw0rd123", u.Password)
	assert.NoError(t, svc.ValidatePassword(u.Password, "passw0rd123"))
}

// TestRegister_Validation 注册入参校验
func TestRegister_Validation(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "张三", "not-an-email", "passw0rd123")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	// 纯数字密码
	_, err = svc.Register(ctx, "张三", "a@example.com", "12345678")
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	// 太短
	_, err = svc.Register(ctx, "张三", "a@example.com", "a1")
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	// 姓名太短
	_, err = svc.Register(ctx, "张", "a@example.com", "passw0rd123")
	assert.ErrorIs(t, err, ErrInvalidName)
}

// TestRegister_EmailDuplicate 重复邮箱注册失败
func TestRegister_EmailDuplicate(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "张三", "dup@example.com", "passw0rd123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "李四", "dup@example.com", "passw0rd456")
	assert.ErrorIs(t, err, ErrEmailDuplicate)
}

// TestLogin 登录:只有APPROVED且启用的账号能登录
func TestLogin(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, "张三", "login@example.com", "passw0rd123")
	require.NoError(t, err)

	// 待审批
	_, err = svc.Login(ctx, "login@example.com", "passw0rd123")
	assert.ErrorIs(t, err, apperrors.ErrNotApproved)

	// 审批通过
	u.Approve()
	require.NoError(t, repo.Update(ctx, u))

	got, err := svc.Login(ctx, "login@example.com", "passw0rd123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// 密码错误
	_, err = svc.Login(ctx, "login@example.com", "wrongpass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	// 停用
	u.SetEnabled(false)
	require.NoError(t, repo.Update(ctx, u))
	_, err = svc.Login(ctx, "login@example.com", "passw0rd123")
	assert.ErrorIs(t, err, apperrors.ErrDisabled)

	// 账号不存在
	_, err = svc.Login(ctx, "nobody@example.com", "passw0rd123")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// TestSetRole 角色校验
func TestSetRole(t *testing.T) {
	u := NewUser("张三", "a@example.com", "hash")

	assert.NoError(t, u.SetRole(RoleAdmin))
	assert.True(t, u.IsAdmin())

	assert.ErrorIs(t, u.SetRole("SUPERUSER"), ErrInvalidRole)
	assert.Equal(t, RoleAdmin, u.Role)
}

// TestCanBorrow 借阅资格与登录规则一致
func TestCanBorrow(t *testing.T) {
	u := NewUser("张三", "a@example.com", "hash")
	assert.False(t, u.CanBorrow())

	u.Approve()
	assert.True(t, u.CanBorrow())

	u.SetEnabled(false)
	assert.False(t, u.CanBorrow())
}
