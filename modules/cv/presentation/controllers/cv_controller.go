package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vitaworks/vitaworks/modules/cv/services"
	"github.com/vitaworks/vitaworks/pkg/application"
	"github.com/vitaworks/vitaworks/pkg/composables"
)

type CVController struct {
	basePath        string
	cvService       *services.CVService
	templateService *services.TemplateService
}

func NewCVController(app application.Application) application.Controller {
	return &CVController{
		basePath:        "/cv",
		cvService:       app.Service(services.CVService{}).(*services.CVService),
		templateService: app.Service(services.TemplateService{}).(*services.TemplateService),
	}
}

func (c *CVController) Key() string {
	return c.basePath
}

func (c *CVController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/templates", c.ListTemplates).Methods(http.MethodGet)
	router.HandleFunc("/templates/{templateID}/users/{userID}", c.Preview).Methods(http.MethodGet)
	router.HandleFunc("/templates/{templateID}/batch", c.CompileBatch).Methods(http.MethodPost)
}

type templateListItem struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartYear int       `json:"startYear"`
	EndYear   int       `json:"endYear"`
}

func (c *CVController) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := c.templateService.GetAll(r.Context())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list templates")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	items := make([]templateListItem, 0, len(templates))
	for _, tpl := range templates {
		items = append(items, templateListItem{
			ID:        tpl.ID,
			Title:     tpl.Title,
			StartYear: tpl.StartYear,
			EndYear:   tpl.EndYear,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

func (c *CVController) Preview(w http.ResponseWriter, r *http.Request) {
	templateID, err := uuid.Parse(mux.Vars(r)["templateID"])
	if err != nil {
		http.Error(w, "invalid template id", http.StatusBadRequest)
		return
	}
	userID := mux.Vars(r)["userID"]

	html, err := c.cvService.CompileUser(r.Context(), templateID, userID)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).
			WithField("user_id", userID).
			Error("failed to compile CV")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

type batchRequest struct {
	UserIDs []string `json:"userIds"`
}

func (c *CVController) CompileBatch(w http.ResponseWriter, r *http.Request) {
	templateID, err := uuid.Parse(mux.Vars(r)["templateID"])
	if err != nil {
		http.Error(w, "invalid template id", http.StatusBadRequest)
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.UserIDs) == 0 {
		http.Error(w, "userIds required", http.StatusBadRequest)
		return
	}

	logger := composables.UseLogger(r.Context())
	result, err := c.cvService.CompileBatch(r.Context(), templateID, req.UserIDs)
	if err != nil {
		logger.WithError(err).Error("failed to compile batch")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, failure := range result.Failures {
		logger.WithField("user_id", failure.UserID).
			WithError(failure.Err).
			Warnf("CV %d of %d failed", failure.Index+1, len(req.UserIDs))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(result.HTML))
}
