package blogsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/quewww/blog/internal/domain"
	context_ "github.com/quewww/blog/internal/infra/context"
	"github.com/quewww/blog/internal/infra/logging"
	http_ "github.com/quewww/blog/internal/infra/transport/http"
	"github.com/quewww/blog/internal/infra/view"
)

const homePath = "/"

// HTTPTransport serves the feed, post pages and profiles.
type HTTPTransport struct {
	postSvc *PostService
	views   *view.Renderer
	log     logging.Logger
	mux     *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(postSvc *PostService, views *view.Renderer) *HTTPTransport {
	ht := &HTTPTransport{
		postSvc: postSvc,
		views:   views,
		log:     logging.GetLogger("svc.blogsvc.http_transport"),
		mux:     http.NewServeMux(),
	}

	ht.RegisterRoutes(ht.mux)

	return ht
}

// RegisterRoutes adds the blog endpoints to mux:
// - GET /: feed of all posts
// - GET /about: static page
// - GET/POST /create: show the form / publish a post (requires a session)
// - GET /post/{id}: post detail
// - GET/POST /post/{id}/edit: show the form / update a post (requires a session)
// - POST /post/{id}/delete: delete a post (requires a session)
// - GET /profile/{username}: posts of a user (requires a session).
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", ht.HandleIndex)
	mux.HandleFunc("GET /about", ht.HandleAbout)
	mux.HandleFunc("GET /create", http_.RequireUser(ht.HandleCreateForm))
	mux.HandleFunc("POST /create", http_.RequireUser(ht.HandleCreate))
	mux.HandleFunc("GET /post/{id}", ht.HandleView)
	mux.HandleFunc("GET /post/{id}/edit", http_.RequireUser(ht.HandleEditForm))
	mux.HandleFunc("POST /post/{id}/edit", http_.RequireUser(ht.HandleEdit))
	mux.HandleFunc("POST /post/{id}/delete", http_.RequireUser(ht.HandleDelete))
	mux.HandleFunc("GET /profile/{username}", http_.RequireUser(ht.HandleProfile))
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleIndex renders the feed.
func (ht *HTTPTransport) HandleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := ht.postSvc.ListPosts(r.Context())
	if err != nil {
		ht.log.ErrorContext(r.Context(), "list posts failed", "error", err)
		writeError(w, err)

		return
	}

	ht.render(w, r, view.PageIndex, view.Data{Title: "Posts", Posts: posts})
}

// HandleAbout renders the about page.
func (ht *HTTPTransport) HandleAbout(w http.ResponseWriter, r *http.Request) {
	ht.render(w, r, view.PageAbout, view.Data{Title: "About"})
}

// HandleCreateForm renders an empty post form.
func (ht *HTTPTransport) HandleCreateForm(w http.ResponseWriter, r *http.Request) {
	ht.render(w, r, view.PagePostForm, view.Data{Title: "New post", Action: "/create"})
}

// HandleView renders a single post.
func (ht *HTTPTransport) HandleView(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)

		return
	}

	p, err := ht.postSvc.GetPost(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrPostNotFound) {
			ht.log.ErrorContext(r.Context(), "get post failed", "error", err)
		}

		writeError(w, err)

		return
	}

	ht.render(w, r, view.PagePost, view.Data{Title: p.Title, Post: p})
}

// HandleEditForm renders the post form filled with the current values.
func (ht *HTTPTransport) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)

		return
	}

	p, err := ht.postSvc.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, err)

		return
	}

	ht.render(w, r, view.PagePostForm, view.Data{
		Title:  "Edit post",
		Post:   p,
		Form:   domain.PostDraft{Title: p.Title, Content: p.Content, Author: p.Author},
		Action: fmt.Sprintf("/post/%d/edit", p.ID),
	})
}

// HandleProfile renders the posts of the user named in the path.
func (ht *HTTPTransport) HandleProfile(w http.ResponseWriter, r *http.Request) {
	u, posts, err := ht.postSvc.Profile(r.Context(), r.PathValue("username"))
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			ht.log.ErrorContext(r.Context(), "load profile failed", "error", err)
		}

		writeError(w, err)

		return
	}

	ht.render(w, r, view.PageProfile, view.Data{Title: u.Username, Profile: u, Posts: posts})
}

func (ht *HTTPTransport) render(w http.ResponseWriter, r *http.Request, page string, data view.Data) {
	if err := ht.views.Render(w, r, http.StatusOK, page, data); err != nil {
		ht.log.ErrorContext(r.Context(), "render failed", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// HandleCreate publishes a post owned by the current user.
// Expects form parameters: title, content, author.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "create post failed", "error", err)
		}
	}(r.Context())

	user, _ := context_.UserFromContext(r.Context())

	draft, err := parseDraft(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return err
	}

	if _, err := ht.postSvc.CreatePost(r.Context(), user, draft); err != nil {
		writeError(w, err)

		return fmt.Errorf("create post: %w", err)
	}

	http.Redirect(w, r, homePath, http.StatusSeeOther)

	return nil
}

// HandleEdit updates a post.
// Expects form parameters: title, content, author.
func (ht *HTTPTransport) HandleEdit(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleEdit(w, r)
}

func (ht *HTTPTransport) handleEdit(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "edit post failed", "error", err)
		}
	}(r.Context())

	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)

		return nil
	}

	user, _ := context_.UserFromContext(r.Context())

	draft, err := parseDraft(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return err
	}

	p, err := ht.postSvc.UpdatePost(r.Context(), user, id, draft)
	if err != nil {
		writeError(w, err)

		return fmt.Errorf("update post: %w", err)
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", p.ID), http.StatusSeeOther)

	return nil
}

// HandleDelete removes a post.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDelete(w, r)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "delete post failed", "error", err)
		}
	}(r.Context())

	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)

		return nil
	}

	user, _ := context_.UserFromContext(r.Context())

	if err := ht.postSvc.DeletePost(r.Context(), user, id); err != nil {
		writeError(w, err)

		return fmt.Errorf("delete post: %w", err)
	}

	http.Redirect(w, r, homePath, http.StatusSeeOther)

	return nil
}

func parseDraft(r *http.Request) (domain.PostDraft, error) {
	if err := r.ParseForm(); err != nil {
		return domain.PostDraft{}, fmt.Errorf("parse form: %w", err)
	}

	return domain.PostDraft{
		Title:   r.PostFormValue("title"),
		Content: r.PostFormValue("content"),
		Author:  r.PostFormValue("author"),
	}, nil
}

// postID parses the {id} path segment. Anything but a positive integer
// is treated as an unknown post.
func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// writeError maps domain errors to an inline plain-text response.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPostNotFound), errors.Is(err, domain.ErrUserNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, domain.ErrNotPostOwner):
		http.Error(w, domain.ErrNotPostOwner.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrEmptyPostTitle):
		http.Error(w, domain.ErrEmptyPostTitle.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrEmptyPostContent):
		http.Error(w, domain.ErrEmptyPostContent.Error(), http.StatusBadRequest)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
