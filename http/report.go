package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avaldeso/machina"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// maxPage keeps (page-1)*limit well inside int range.
	maxPage = 1 << 20
)

// CreateReportRequest is the request payload for creating a report.
type CreateReportRequest struct {
	ClientName    string    `json:"clientName" validate:"required,max=255"`
	MachineType   string    `json:"machineType" validate:"required,max=255"`
	Model         string    `json:"model" validate:"max=255"`
	SerialNumber  string    `json:"serialNumber" validate:"max=255"`
	Hourmeter     float64   `json:"hourmeter" validate:"gte=0"`
	ReportDate    time.Time `json:"reportDate"`
	OTT           string    `json:"ott" validate:"max=255"`
	ServiceReason string    `json:"serviceReason"`
}

// EmailReportRequest is the request payload for mailing a report.
type EmailReportRequest struct {
	Recipients []string `json:"recipients" validate:"required,min=1,max=10,dive,email"`
	Message    string   `json:"message" validate:"max=1000"`
	Branded    bool     `json:"branded"`
}

func (s *Server) handleListReports(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	filter, err := reportFilterFromQuery(c)
	if err != nil {
		return err
	}

	reports, total, err := s.reportService.FindReports(ctx, filter)
	if err != nil {
		return err
	}

	return RespondList(c, reports, total, filter.Page, filter.Limit)
}

// reportFilterFromQuery builds a report filter from list query parameters.
func reportFilterFromQuery(c echo.Context) (machina.ReportFilter, error) {
	filter := machina.ReportFilter{
		Page:  1,
		Limit: defaultPageSize,
	}

	optional := func(name string) *string {
		if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
			return &v
		}
		return nil
	}

	filter.MachineType = optional("machine_type")
	filter.ClientName = optional("client_name")
	filter.UserName = optional("user_name")
	filter.SerialNumber = optional("serial_number")

	if v := c.QueryParam("status"); v != "" {
		status := machina.ReportStatus(v)
		if !status.Valid() {
			return filter, machina.Invalid("Invalid status filter")
		}
		filter.Status = &status
	}
	if v := c.QueryParam("closure"); v != "" {
		closure := machina.ClosureState(v)
		if !closure.Valid() {
			return filter, machina.Invalid("Invalid closure filter")
		}
		filter.Closure = &closure
	}

	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, machina.Invalid("Invalid page number")
		}
		if page > maxPage {
			page = maxPage
		}
		filter.Page = page
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, machina.Invalid("Invalid page size")
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
		filter.Limit = limit
	}

	return filter, nil
}

func (s *Server) handleGetReport(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	report, err := s.reportService.FindReportByID(ctx, id)
	if err != nil {
		return err
	}

	return RespondOK(c, report)
}

func (s *Server) handleCreateReport(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var req CreateReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	report := &machina.Report{
		UserID:        user.ID,
		ClientName:    req.ClientName,
		MachineType:   req.MachineType,
		Model:         req.Model,
		SerialNumber:  req.SerialNumber,
		Hourmeter:     req.Hourmeter,
		ReportDate:    req.ReportDate,
		OTT:           req.OTT,
		ServiceReason: req.ServiceReason,
	}

	if err := s.reportService.CreateReport(ctx, report); err != nil {
		return err
	}

	s.log(c).Info("report created", slog.String("report_id", report.ID.String()))

	return RespondCreated(c, report)
}

// handleUpdateReport submits the full desired state of a report. The
// payload is either plain JSON or, when new photos accompany the edit,
// multipart form data with the JSON under the "report" field and files
// under "photos_<componentIndex>" keys.
func (s *Server) handleUpdateReport(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var upd machina.ReportUpdate
	var uploads []machina.PhotoUpload

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return machina.Invalid("Invalid multipart form")
		}

		raw := c.FormValue("report")
		if raw == "" {
			return machina.Invalid("Missing report field")
		}
		if err := json.Unmarshal([]byte(raw), &upd); err != nil {
			return machina.Invalid("Invalid report payload")
		}

		files, closeFiles, err := photoUploadsFromForm(form)
		if err != nil {
			return err
		}
		defer closeFiles()
		uploads = files
	} else {
		if err := c.Bind(&upd); err != nil {
			return machina.Invalid("Invalid request body")
		}
	}

	if err := c.Validate(&upd); err != nil {
		return err
	}

	report, err := s.reportService.UpdateReport(ctx, id, upd, uploads)
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		s.metrics.RecordReconciliation(outcome)
	}
	if err != nil {
		return err
	}

	return RespondOK(c, report)
}

// photoUploadsFromForm extracts new photo files from a multipart form.
// Each file is keyed "photos_<n>" where n is the index of the component
// it belongs to in the submitted components slice.
func photoUploadsFromForm(form *multipart.Form) ([]machina.PhotoUpload, func(), error) {
	var uploads []machina.PhotoUpload
	var opened []multipart.File

	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for key, headers := range form.File {
		idxStr, ok := strings.CutPrefix(key, "photos_")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 {
			closeAll()
			return nil, nil, machina.Invalid("Invalid photo field %q", key)
		}

		for _, fh := range headers {
			if fh.Size > machina.MaxUploadSize {
				closeAll()
				return nil, nil, machina.Invalid("File %s exceeds the %dMB limit", fh.Filename, machina.MaxUploadSize/(1024*1024))
			}
			contentType := fh.Header.Get("Content-Type")
			if !machina.IsAcceptedImageType(contentType) {
				closeAll()
				return nil, nil, machina.Invalid("File %s has unsupported type %s", fh.Filename, contentType)
			}

			f, err := fh.Open()
			if err != nil {
				closeAll()
				return nil, nil, machina.Internal("Failed to read uploaded file", err)
			}
			opened = append(opened, f)

			uploads = append(uploads, machina.PhotoUpload{
				ComponentIndex: idx,
				OriginalName:   fh.Filename,
				ContentType:    contentType,
				Size:           fh.Size,
				Content:        f,
			})
		}
	}

	return uploads, closeAll, nil
}

func (s *Server) handleCloseReport(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	report, err := s.reportService.CloseReport(ctx, id)
	if err != nil {
		return err
	}

	s.log(c).Info("report closed", slog.String("report_id", id.String()))

	return RespondOK(c, report)
}

func (s *Server) handleDeleteReport(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.reportService.DeleteReport(ctx, id); err != nil {
		return err
	}

	s.log(c).Info("report deleted", slog.String("report_id", id.String()))

	return RespondNoContent(c)
}

// handleReportPDF renders the report as a PDF document. Viewers always
// receive the unbranded variant regardless of the query parameter.
func (s *Server) handleReportPDF(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	report, err := s.reportService.FindReportByID(ctx, id)
	if err != nil {
		return err
	}

	branded := c.QueryParam("branded") != "false"
	if user.Role == machina.RoleViewer {
		branded = false
	}

	data, err := s.renderer.RenderReport(ctx, report, machina.RenderOptions{Branded: branded})
	if err != nil {
		s.log(c).Error("failed to render report", slog.String("error", err.Error()))
		return machina.Internal("Failed to render report", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="report-%s.pdf"`, id))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// handleEmailReport enqueues a background job that renders the report
// and emails it to the given recipients.
func (s *Server) handleEmailReport(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req EmailReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	// Confirm the caller can see the report before accepting the job.
	if _, err := s.reportService.FindReportByID(ctx, id); err != nil {
		return err
	}

	payload, err := json.Marshal(machina.ReportEmailPayload{
		ReportID:   id,
		Recipients: req.Recipients,
		Message:    req.Message,
		Branded:    req.Branded,
	})
	if err != nil {
		return machina.Internal("Failed to encode job payload", err)
	}

	job := &machina.Job{
		QueueName: machina.QueueDefault,
		JobType:   machina.JobTypeReportEmail,
		Payload:   payload,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.log(c).Error("failed to enqueue report email", slog.String("error", err.Error()))
		return machina.Internal("Failed to queue email", err)
	}

	s.log(c).Info("report email queued",
		slog.String("report_id", id.String()),
		slog.String("job_id", job.ID.String()),
		slog.Int("recipients", len(req.Recipients)))

	return Respond(c, http.StatusAccepted, map[string]string{"jobId": job.ID.String()})
}
