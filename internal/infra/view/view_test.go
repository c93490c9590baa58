package view_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quewww/blog/internal/domain"
	context_ "github.com/quewww/blog/internal/infra/context"
	"github.com/quewww/blog/internal/infra/view"
)

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	posts := []domain.Post{
		{ID: 1, Title: "<b>T</b>", Author: "A", CreatedAt: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)},
	}

	tests := []struct {
		name     string
		page     string
		user     *domain.User
		data     view.Data
		contains []string
		excludes []string
	}{
		{
			name:     "index escapes titles",
			page:     view.PageIndex,
			data:     view.Data{Posts: posts},
			contains: []string{"&lt;b&gt;T&lt;/b&gt;", "/post/1", "02 Jan 2024, 03:04", "/login"},
			excludes: []string{"<b>T</b>"},
		},
		{
			name:     "empty index",
			page:     view.PageIndex,
			contains: []string{"No posts yet."},
			excludes: []string{`class="error"`},
		},
		{
			name:     "current user from context",
			page:     view.PageAbout,
			user:     &domain.User{ID: 1, Username: "alice"},
			contains: []string{"/profile/alice", "/logout"},
		},
		{
			name:     "form keeps values",
			page:     view.PagePostForm,
			data:     view.Data{Title: "Edit post", Action: "/post/1/edit", Form: domain.PostDraft{Title: "T", Content: "C"}},
			contains: []string{`action="/post/1/edit"`, `value="T"`, ">C</textarea>"},
		},
		{
			name:     "profile",
			page:     view.PageProfile,
			data:     view.Data{Profile: &domain.User{Username: "bob"}, Posts: posts},
			contains: []string{"<h1>bob</h1>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				r = r.WithContext(context_.WithUser(context.Background(), tt.user))
			}

			w := httptest.NewRecorder()

			require.NoError(t, renderer.Render(w, r, http.StatusOK, tt.page, tt.data))
			assert.Equal(t, http.StatusOK, w.Code)

			body := w.Body.String()
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}

			for _, s := range tt.excludes {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestRenderer_UnknownPage(t *testing.T) {
	t.Parallel()

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	err = renderer.Render(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil),
		http.StatusOK, "missing", view.Data{})
	assert.ErrorIs(t, err, view.ErrUnknownPage)
}
