package service

import (
	"context"
	"sync"
	"testing"

	"clipstream/internal/model"
	"clipstream/pkg/apperr"
	"clipstream/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeUserRepo 内存实现，复刻用户名唯一索引的行为
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*model.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) EnsureIndexes(ctx context.Context) error { return nil }

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), RegisterInput{Username: "", FullName: "A", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Register(context.Background(), RegisterInput{Username: "alice", FullName: " ", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Register(context.Background(), RegisterInput{Username: "alice", FullName: "Alice", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRegisterHashesPasswordAndLowercasesUsername(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "  Alice  ",
		FullName: "Alice Liddell",
		Password: "wonderland",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "wonderland", user.Password)
	assert.True(t, utils.VerifyPassword("wonderland", user.Password))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	in := RegisterInput{Username: "bob", FullName: "Bob", Password: "builder1"}
	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "already taken")
}

func TestGetProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	created, err := svc.Register(context.Background(), RegisterInput{Username: "carol", FullName: "Carol", Password: "secret1"})
	require.NoError(t, err)

	got, err := svc.GetProfile(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Username)

	_, err = svc.GetProfile(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
