package leave

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/apperror"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/response"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const proofField = "proof_file"

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	appErr := apperror.MapValidationError(err)
	h.logger.Warn("http leave validation failed", zap.String("path", c.FullPath()), zap.Error(err))
	response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, err.Error())
}

// Create accepts a JSON body, or a multipart form with an optional
// proof_file part.
func (h *Handler) Create(c *gin.Context) {
	actorID := c.GetString("user_id")
	h.logger.Debug("http create leave", zap.String("actor_id", actorID))

	var req CreateLeaveRequest
	var proof *storage.Upload

	if strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxProofSize+1<<20)
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			h.writeBindError(c, err)
			return
		}

		fh, err := c.FormFile(proofField)
		if err != nil && err != http.ErrMissingFile {
			h.writeServiceError(c, storage.ErrFileTooLarge.WithCause(err))
			return
		}
		if fh != nil {
			if fh.Size > storage.MaxProofSize {
				h.writeServiceError(c, storage.ErrFileTooLarge)
				return
			}
			f, err := fh.Open()
			if err != nil {
				h.writeServiceError(c, err)
				return
			}
			defer f.Close()
			proof = &storage.Upload{Filename: fh.Filename, Content: f}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actorID, req, proof)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

// GetAll supports status, type_of_leave, employee_id, q, page and page_size.
func (h *Handler) GetAll(c *gin.Context) {
	filter := ListFilter{
		Status:      c.Query("status"),
		TypeOfLeave: strings.ToLower(strings.TrimSpace(c.Query("type_of_leave"))),
		EmployeeID:  c.Query("employee_id"),
		Query:       c.Query("q"),
	}
	h.logger.Debug("http get all leaves", zap.Any("filter", filter))

	resp, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, pageSize := pageParams(c)
	start, end := response.Paginate(len(resp), page, pageSize)

	meta := response.NewPaginationMeta(int64(len(resp)), page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http get leave by id", zap.String("leave_id", id))

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	actorID := c.GetString("user_id")
	h.logger.Debug("http update leave", zap.String("leave_id", id), zap.String("actor_id", actorID))

	var req UpdateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http delete leave", zap.String("leave_id", id))

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) History(c *gin.Context) {
	h.logger.Debug("http leave history")

	resp, err := h.service.History(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) EmployeeHistory(c *gin.Context) {
	employeeID := c.Param("employeeId")
	h.logger.Debug("http employee leave history", zap.String("employee_id", employeeID))

	resp, err := h.service.EmployeeHistory(c.Request.Context(), employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) EmployeeReport(c *gin.Context) {
	employeeID := c.Param("employeeId")
	h.logger.Debug("http employee leave report", zap.String("employee_id", employeeID))

	hist, err := h.service.EmployeeHistory(c.Request.Context(), employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteHistoryReport(&buf, hist, time.Now()); err != nil {
		h.logger.Error("render leave report failed", zap.String("employee_id", employeeID), zap.Error(err))
		h.writeServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leave-history-%s.pdf", hist.Employee.EmployeeNumber)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *Handler) Proof(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http leave proof", zap.String("leave_id", id))

	f, err := h.service.OpenProof(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer f.Close()

	c.DataFromReader(http.StatusOK, -1, f.ContentType, f, map[string]string{
		"Content-Disposition": `inline; filename="` + f.Name + `"`,
	})
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
