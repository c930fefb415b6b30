package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/nikbrunner/linkkoy/internal/auth"
	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/repository"
	"github.com/nikbrunner/linkkoy/internal/search"
)

type tokenResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type folderRequest struct {
	Name     string  `json:"name"`
	Icon     string  `json:"icon"`
	Color    *string `json:"color"`
	ParentID *string `json:"parentId"`
}

type linkRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	FolderID string `json:"folderId"`
}

// linkUpdateRequest updates title and url together, moves the link, or
// both.
type linkUpdateRequest struct {
	Title    *string `json:"title"`
	URL      *string `json:"url"`
	FolderID *string `json:"folderId"`
}

type searchResponse struct {
	Folders []model.Folder `json:"folders"`
	Links   []model.Link   `json:"links"`
}

// respondErr maps domain errors to status codes.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, auth.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrStoreUnavailable):
		s.logger.Error("store unavailable", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) issue(w http.ResponseWriter, r *http.Request, status int, u auth.User) {
	token, err := GenerateToken(u.ID, s.secret, s.tokenTTL)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, status, tokenResponse{Token: token, User: u})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterParams
	if err := parseJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.issue(w, r, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := parseJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.issue(w, r, http.StatusOK, u)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.GetUser(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// ownedFolder fetches a folder and hides folders of other users.
func (s *Server) ownedFolder(ctx context.Context, id string) (model.Folder, error) {
	f, err := s.repo.GetFolder(ctx, id)
	if err != nil {
		return model.Folder{}, err
	}
	if f.UserID != userIDFrom(ctx) {
		return model.Folder{}, repository.ErrNotFound
	}
	return f, nil
}

// ownedLink fetches a link and hides links of other users.
func (s *Server) ownedLink(ctx context.Context, id string) (model.Link, error) {
	l, err := s.repo.GetLink(ctx, id)
	if err != nil {
		return model.Link{}, err
	}
	if l.UserID != userIDFrom(ctx) {
		return model.Link{}, repository.ErrNotFound
	}
	return l, nil
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parentID := r.URL.Query().Get("parent_id")

	var folders []model.Folder
	var err error
	if parentID == "" {
		folders, err = s.repo.ListRootFolders(ctx, userIDFrom(ctx))
	} else {
		if _, err = s.ownedFolder(ctx, parentID); err == nil {
			folders, err = s.repo.ListChildFolders(ctx, parentID)
		}
	}
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, folders)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req folderRequest
	if err := parseJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := model.NewFolderParams{
		Name:     req.Name,
		Icon:     req.Icon,
		Color:    req.Color,
		ParentID: req.ParentID,
		UserID:   userIDFrom(ctx),
	}
	if err := params.Validate(); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.ParentID != nil {
		if _, err := s.ownedFolder(ctx, *req.ParentID); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}

	f, err := s.repo.CreateFolder(ctx, params)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, f)
}

func (s *Server) handleGetFolder(w http.ResponseWriter, r *http.Request) {
	f, err := s.ownedFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleUpdateFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req folderRequest
	if err := parseJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	update := model.FolderUpdate{Name: req.Name, Icon: req.Icon, Color: req.Color}
	if err := update.Validate(); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if _, err := s.ownedFolder(ctx, id); err != nil {
		s.respondErr(w, r, err)
		return
	}

	if err := s.repo.UpdateFolder(ctx, id, update); err != nil {
		s.respondErr(w, r, err)
		return
	}
	f, err := s.repo.GetFolder(ctx, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := s.ownedFolder(ctx, id); err != nil {
		s.respondErr(w, r, err)
		return
	}

	if err := s.repo.DeleteFolderCascade(ctx, id); err != nil {
		s.metrics.deleteFailures.WithLabelValues(model.KindFolder.String()).Inc()
		s.respondErr(w, r, err)
		return
	}
	s.metrics.cascadeDeletes.Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	folderID := r.URL.Query().Get("folder_id")

	var links []model.Link
	var err error
	if folderID == "" {
		links, err = s.repo.ListAllLinks(ctx, userIDFrom(ctx))
	} else {
		if _, err = s.ownedFolder(ctx, folderID); err == nil {
			links, err = s.repo.ListLinks(ctx, folderID)
		}
	}
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, links)
}

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req linkRequest
	if err := parseJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := model.NewLinkParams{
		Title:    req.Title,
		URL:      req.URL,
		FolderID: req.FolderID,
		UserID:   userIDFrom(ctx),
	}
	if err := params.Validate(); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if _, err := s.ownedFolder(ctx, req.FolderID); err != nil {
		s.respondErr(w, r, err)
		return
	}

	l, err := s.repo.CreateLink(ctx, params)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, l)
}

func (s *Server) handleGetLink(w http.ResponseWriter, r *http.Request) {
	l, err := s.ownedLink(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (s *Server) handleUpdateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req linkUpdateRequest
	if err := parseJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	editing := req.Title != nil || req.URL != nil
	if !editing && req.FolderID == nil {
		respondError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	var update model.LinkUpdate
	if editing {
		if req.Title != nil {
			update.Title = *req.Title
		}
		if req.URL != nil {
			update.URL = *req.URL
		}
		if err := update.Validate(); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}

	if _, err := s.ownedLink(ctx, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.FolderID != nil {
		if _, err := s.ownedFolder(ctx, *req.FolderID); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}

	if editing {
		if err := s.repo.UpdateLink(ctx, id, update); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}
	if req.FolderID != nil {
		if err := s.repo.MoveLink(ctx, id, *req.FolderID); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}

	l, err := s.repo.GetLink(ctx, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := s.ownedLink(ctx, id); err != nil {
		s.respondErr(w, r, err)
		return
	}

	if err := s.repo.DeleteLink(ctx, id); err != nil {
		s.metrics.deleteFailures.WithLabelValues(model.KindLink.String()).Inc()
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSearch filters the user's folders and links. A blank query
// matches everything.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFrom(ctx)
	q := r.URL.Query().Get("q")

	folders, err := s.repo.ListAllFolders(ctx, userID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	links, err := s.repo.ListAllLinks(ctx, userID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, searchResponse{
		Folders: search.MatchFolders(folders, q),
		Links:   search.MatchLinks(links, q),
	})
}
