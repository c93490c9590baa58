package blogsvc_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quewww/blog/internal/domain"
	"github.com/quewww/blog/internal/infra/logging"
	"github.com/quewww/blog/internal/svc/blogsvc"
)

var errRepo = errors.New("repository error")

// mockPostRepository implements post.Repository for testing.
type mockPostRepository struct {
	posts  []domain.Post
	nextID int64
	now    time.Time
	err    error
	m      sync.Mutex
}

func (m *mockPostRepository) CreatePost(_ context.Context, draft domain.PostDraft, ownerID int64) (*domain.Post, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	m.nextID++
	m.now = m.now.Add(time.Second)

	p := domain.Post{
		ID:        m.nextID,
		Title:     draft.Title,
		Content:   draft.Content,
		Author:    draft.Author,
		CreatedAt: m.now,
		UserID:    ownerID,
	}
	m.posts = append(m.posts, p)

	return &p, nil
}

func (m *mockPostRepository) index(id int64) int {
	return slices.IndexFunc(m.posts, func(p domain.Post) bool { return p.ID == id })
}

func (m *mockPostRepository) GetPost(_ context.Context, id int64) (*domain.Post, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	i := m.index(id)
	if i < 0 {
		return nil, domain.ErrPostNotFound
	}

	p := m.posts[i]

	return &p, nil
}

func (m *mockPostRepository) ListPosts(_ context.Context) ([]domain.Post, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	return slices.Clone(m.posts), nil
}

func (m *mockPostRepository) ListPostsByOwner(_ context.Context, ownerID int64) ([]domain.Post, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	var posts []domain.Post

	for i := len(m.posts) - 1; i >= 0; i-- {
		if m.posts[i].UserID == ownerID {
			posts = append(posts, m.posts[i])
		}
	}

	return posts, nil
}

func (m *mockPostRepository) UpdatePost(_ context.Context, id int64, draft domain.PostDraft) (*domain.Post, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	i := m.index(id)
	if i < 0 {
		return nil, domain.ErrPostNotFound
	}

	m.posts[i].Title = draft.Title
	m.posts[i].Content = draft.Content
	m.posts[i].Author = draft.Author
	p := m.posts[i]

	return &p, nil
}

func (m *mockPostRepository) DeletePost(_ context.Context, id int64) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}

	i := m.index(id)
	if i < 0 {
		return domain.ErrPostNotFound
	}

	m.posts = slices.Delete(m.posts, i, i+1)

	return nil
}

func (m *mockPostRepository) setErr(err error) {
	m.m.Lock()
	defer m.m.Unlock()

	m.err = err
}

// mockUserRepository implements user.Repository for testing.
type mockUserRepository struct {
	users []*domain.User
}

func (m *mockUserRepository) CreateUser(_ context.Context, username, email, passwordHash string) (*domain.User, error) {
	u := &domain.User{ID: int64(len(m.users) + 1), Username: username, Email: email, PasswordHash: passwordHash}
	m.users = append(m.users, u)

	return u, nil
}

func (m *mockUserRepository) find(match func(*domain.User) bool) (*domain.User, bool, error) {
	for _, u := range m.users {
		if match(u) {
			return u, true, nil
		}
	}

	return nil, false, nil
}

func (m *mockUserRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, bool, error) {
	return m.find(func(u *domain.User) bool { return u.Username == username })
}

func (m *mockUserRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, bool, error) {
	return m.find(func(u *domain.User) bool { return u.Email == email })
}

func (m *mockUserRepository) GetUserByID(_ context.Context, id int64) (*domain.User, bool, error) {
	return m.find(func(u *domain.User) bool { return u.ID == id })
}

type fixture struct {
	svc   *blogsvc.PostService
	posts *mockPostRepository
	alice *domain.User
	bob   *domain.User
}

func setupPostService(t *testing.T, cfg blogsvc.BlogConfig) *fixture {
	t.Helper()

	users := &mockUserRepository{}
	alice, _ := users.CreateUser(t.Context(), "alice", "a@x.com", "hash")
	bob, _ := users.CreateUser(t.Context(), "bob", "b@x.com", "hash")

	posts := &mockPostRepository{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	return &fixture{
		svc: &blogsvc.PostService{
			Config:   cfg,
			PostRepo: posts,
			UserRepo: users,
			Log:      logging.GetLogger("test.blogsvc"),
		},
		posts: posts,
		alice: alice,
		bob:   bob,
	}
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		draft      domain.PostDraft
		repoErr    error
		wantErr    error
		wantAuthor string
	}{
		{
			name:       "with author",
			draft:      domain.PostDraft{Title: " T ", Content: "C", Author: "A"},
			wantAuthor: "A",
		},
		{
			name:       "default author",
			draft:      domain.PostDraft{Title: "T", Content: "C"},
			wantAuthor: domain.DefaultPostAuthor,
		},
		{
			name:    "blank title",
			draft:   domain.PostDraft{Title: "  ", Content: "C"},
			wantErr: domain.ErrEmptyPostTitle,
		},
		{
			name:    "blank content",
			draft:   domain.PostDraft{Title: "T", Content: "\n"},
			wantErr: domain.ErrEmptyPostContent,
		},
		{
			name:    "repository error",
			draft:   domain.PostDraft{Title: "T", Content: "C"},
			repoErr: errRepo,
			wantErr: errRepo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupPostService(t, blogsvc.BlogConfig{})
			f.posts.setErr(tt.repoErr)

			p, err := f.svc.CreatePost(t.Context(), f.alice, tt.draft)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.posts.posts)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "T", p.Title)
			assert.Equal(t, tt.wantAuthor, p.Author)
			assert.Equal(t, f.alice.ID, p.UserID)
		})
	}
}

func TestPostService_Ownership(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		enforce bool
		wantErr error
	}{
		{name: "any user may modify by default"},
		{name: "owner only when enforced", enforce: true, wantErr: domain.ErrNotPostOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupPostService(t, blogsvc.BlogConfig{EnforceOwnership: tt.enforce})

			p, err := f.svc.CreatePost(t.Context(), f.alice, domain.PostDraft{Title: "T", Content: "C"})
			require.NoError(t, err)

			_, err = f.svc.UpdatePost(t.Context(), f.bob, p.ID, domain.PostDraft{Title: "T2", Content: "C2"})
			require.ErrorIs(t, err, tt.wantErr)

			err = f.svc.DeletePost(t.Context(), f.bob, p.ID)
			require.ErrorIs(t, err, tt.wantErr)

			if tt.wantErr != nil {
				_, err = f.svc.UpdatePost(t.Context(), f.alice, p.ID, domain.PostDraft{Title: "T2", Content: "C2"})
				require.NoError(t, err)
				require.NoError(t, f.svc.DeletePost(t.Context(), f.alice, p.ID))
			}

			_, err = f.svc.GetPost(t.Context(), p.ID)
			require.ErrorIs(t, err, domain.ErrPostNotFound)
		})
	}
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	f := setupPostService(t, blogsvc.BlogConfig{})

	p, err := f.svc.CreatePost(t.Context(), f.alice, domain.PostDraft{Title: "T", Content: "C", Author: "A"})
	require.NoError(t, err)

	updated, err := f.svc.UpdatePost(t.Context(), f.alice, p.ID, domain.PostDraft{Title: "T2", Content: "C2"})
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, domain.DefaultPostAuthor, updated.Author)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)

	_, err = f.svc.UpdatePost(t.Context(), f.alice, p.ID, domain.PostDraft{Title: "", Content: "C"})
	require.ErrorIs(t, err, domain.ErrEmptyPostTitle)

	_, err = f.svc.UpdatePost(t.Context(), f.alice, 999, domain.PostDraft{Title: "T", Content: "C"})
	require.ErrorIs(t, err, domain.ErrPostNotFound)

	_, err = f.svc.UpdatePost(t.Context(), f.alice, 999, domain.PostDraft{Title: " ", Content: "C"})
	require.ErrorIs(t, err, domain.ErrPostNotFound)

	require.ErrorIs(t, f.svc.DeletePost(t.Context(), f.alice, 999), domain.ErrPostNotFound)
}

func TestPostService_Profile(t *testing.T) {
	t.Parallel()

	f := setupPostService(t, blogsvc.BlogConfig{})

	for _, title := range []string{"first", "second"} {
		_, err := f.svc.CreatePost(t.Context(), f.alice, domain.PostDraft{Title: title, Content: "C"})
		require.NoError(t, err)
	}

	_, err := f.svc.CreatePost(t.Context(), f.bob, domain.PostDraft{Title: "bobs", Content: "C"})
	require.NoError(t, err)

	u, posts, err := f.svc.Profile(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, u.ID)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Title)
	assert.Equal(t, "first", posts[1].Title)

	all, err := f.svc.ListPosts(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, _, err = f.svc.Profile(t.Context(), "nobody")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
