package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "secustats/internal/errors"
	"secustats/internal/exporter"
	"secustats/internal/infrastructure"
	"secustats/internal/services"
	"secustats/internal/stats"
)

// DataHandler handles data-related HTTP requests with RFC 7807 compliance
type DataHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the data routes with proper Chi patterns
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/report", h.GetReport)
	r.Get("/indicators", h.GetIndicators)
	r.Get("/years", h.GetYears)
	r.Get("/departments", h.GetDepartments)
	r.Get("/series", h.GetSeries)
	r.Get("/summary", h.GetSummary)
	r.Get("/ranking", h.GetRanking)
	r.Get("/export", h.Export)

	return r
}

// filterQuery carries the query parameters shared by the aggregation
// endpoints.
type filterQuery struct {
	Indicators []string `validate:"omitempty,dive,min=1,max=200"`
	StartYear  int      `validate:"omitempty,gte=1900,lte=2100"`
	EndYear    int      `validate:"omitempty,gte=1900,lte=2100"`
	DeptCodes  []string `validate:"omitempty,dive,min=2,max=3"`
}

func (q filterQuery) filter() stats.Filter {
	return stats.Filter{
		Indicators: q.Indicators,
		StartYear:  q.StartYear,
		EndYear:    q.EndYear,
		DeptCodes:  q.DeptCodes,
	}
}

// parseFilter decodes and validates the common query parameters.
func (h *DataHandler) parseFilter(values url.Values) (filterQuery, *apierrors.APIError) {
	var q filterQuery

	q.Indicators = values["indicator"]
	q.DeptCodes = values["dept"]

	var err error
	if q.StartYear, err = parseYear(values.Get("start_year")); err != nil {
		return q, apierrors.ErrValidation("start_year", "must be a four-digit year")
	}
	if q.EndYear, err = parseYear(values.Get("end_year")); err != nil {
		return q, apierrors.ErrValidation("end_year", "must be a four-digit year")
	}

	if err := h.validate.Struct(q); err != nil {
		var fields []apierrors.ValidationError
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, apierrors.ValidationError{
					Field:   fe.Field(),
					Message: fmt.Sprintf("failed %s validation", fe.Tag()),
				})
			}
		}
		return q, apierrors.NewValidationErrors(fields)
	}

	return q, nil
}

func parseYear(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// GetOverview handles GET /api/data/overview
func (h *DataHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "overview")
		return
	}
	render.JSON(w, r, overview)
}

// GetReport handles GET /api/data/report with the last load diagnostics
func (h *DataHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "report")
		return
	}
	render.JSON(w, r, report)
}

// GetIndicators handles GET /api/data/indicators
func (h *DataHandler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := h.service.Indicators(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "indicators")
		return
	}
	render.JSON(w, r, map[string]interface{}{"indicators": indicators})
}

// GetYears handles GET /api/data/years
func (h *DataHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Years(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "years")
		return
	}
	render.JSON(w, r, map[string]interface{}{"years": years})
}

// GetDepartments handles GET /api/data/departments
func (h *DataHandler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.Departments(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "departments")
		return
	}
	render.JSON(w, r, map[string]interface{}{"departments": departments})
}

// GetSeries handles GET /api/data/series
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	q, apiErr := h.parseFilter(r.URL.Query())
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	series, err := h.service.Series(r.Context(), q.filter())
	if err != nil {
		h.handleServiceError(w, r, err, "series")
		return
	}
	render.JSON(w, r, map[string]interface{}{"series": series})
}

// GetSummary handles GET /api/data/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q, apiErr := h.parseFilter(r.URL.Query())
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	summaries, err := h.service.Summary(r.Context(), q.filter())
	if err != nil {
		h.handleServiceError(w, r, err, "summary")
		return
	}
	render.JSON(w, r, map[string]interface{}{"summary": summaries})
}

// GetRanking handles GET /api/data/ranking
func (h *DataHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.rankingFromQuery(r)
	if err != nil {
		h.handleServiceError(w, r, err, "ranking")
		return
	}
	render.JSON(w, r, ranking)
}

// rankingFromQuery parses the ranking parameters and runs the aggregation.
func (h *DataHandler) rankingFromQuery(r *http.Request) (stats.Ranking, error) {
	values := r.URL.Query()

	indicator := values.Get("indicator")
	if indicator == "" {
		return stats.Ranking{}, apierrors.ErrValidation("indicator", "indicator is required")
	}

	q, apiErr := h.parseFilter(values)
	if apiErr != nil {
		return stats.Ranking{}, apiErr
	}

	top := 0
	if s := values.Get("top"); s != "" {
		var err error
		top, err = strconv.Atoi(s)
		if err != nil || top < 1 || top > 100 {
			return stats.Ranking{}, apierrors.ErrValidation("top", "must be an integer between 1 and 100")
		}
	}

	f := q.filter()
	f.Indicators = nil // the ranking is scoped by the indicator parameter
	return h.service.Ranking(r.Context(), indicator, f, top)
}

// Export handles GET /api/data/export, streaming the ranking or summary as a
// downloadable CSV or XLSX file.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	format := values.Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "must be csv or xlsx"))
		return
	}

	resource := values.Get("resource")
	if resource == "" {
		resource = "ranking"
	}

	switch resource {
	case "ranking":
		h.exportRanking(w, r, format)
	case "summary":
		h.exportSummary(w, r, format)
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("resource", "must be ranking or summary"))
	}
}

func (h *DataHandler) exportRanking(w http.ResponseWriter, r *http.Request, format string) {
	ranking, err := h.rankingFromQuery(r)
	if err != nil {
		h.handleServiceError(w, r, err, "export")
		return
	}

	filename := fmt.Sprintf("classement-%s.%s", time.Now().Format("2006-01-02"), format)
	setDownloadHeaders(w, filename, format)

	if format == "xlsx" {
		err = exporter.WriteRankingXLSX(w, ranking)
	} else {
		err = exporter.WriteRankingCSV(w, ranking)
	}
	if err != nil {
		// Headers are already sent; log instead of re-rendering.
		h.logger.ErrorContext(r.Context(), "export write failed",
			slog.String("error", err.Error()),
			slog.String("request_id", infrastructure.GetTraceID(r.Context())))
	}
}

func (h *DataHandler) exportSummary(w http.ResponseWriter, r *http.Request, format string) {
	if format == "xlsx" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "summary export supports csv only"))
		return
	}

	q, apiErr := h.parseFilter(r.URL.Query())
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	summaries, err := h.service.Summary(r.Context(), q.filter())
	if err != nil {
		h.handleServiceError(w, r, err, "export")
		return
	}

	filename := fmt.Sprintf("bilan-%s.csv", time.Now().Format("2006-01-02"))
	setDownloadHeaders(w, filename, "csv")

	if err := exporter.WriteSummaryCSV(w, summaries); err != nil {
		h.logger.ErrorContext(r.Context(), "export write failed",
			slog.String("error", err.Error()),
			slog.String("request_id", infrastructure.GetTraceID(r.Context())))
	}
}

func setDownloadHeaders(w http.ResponseWriter, filename, format string) {
	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// handleServiceError maps service sentinel errors to API errors before
// delegating to the RFC 7807 handler.
func (h *DataHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	h.logger.ErrorContext(r.Context(), "data request failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.String("request_id", infrastructure.GetTraceID(r.Context())),
	)

	switch {
	case errors.Is(err, services.ErrIndicatorNotFound):
		err = apierrors.NewWithDetails(http.StatusNotFound, "INDICATOR_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrDepartmentNotFound):
		err = apierrors.NewWithDetails(http.StatusNotFound, "DEPARTMENT_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrYearNotFound):
		err = apierrors.NewWithDetails(http.StatusNotFound, "YEAR_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidRange):
		err = apierrors.ErrValidation("start_year", err.Error())
	case errors.Is(err, services.ErrEmptySelection):
		err = apierrors.ErrEmptySelection
	case errors.Is(err, services.ErrNoData):
		err = apierrors.ErrDatasetUnavailable
	}

	h.errorHandler.HandleError(w, r, err)
}
