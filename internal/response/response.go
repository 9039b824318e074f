package response

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck/internal/apperr"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ExposeCause controls whether the wrapped error text of internal failures
// reaches clients. Upload failures always carry the store's message.
var ExposeCause = false

type Envelope struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

func Success(ctx *gin.Context, code int, message string, data any) {
	ctx.JSON(code, Envelope{
		Code:    code,
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// Error writes err as an error envelope. Errors that are not *apperr.Error are
// reported as InternalError with fallback as the message.
func Error(ctx *gin.Context, err error, fallback string) {
	ctx.JSON(envelopeFor(ctx, err, fallback))
}

// Abort is Error for middleware: the remaining handlers are skipped.
func Abort(ctx *gin.Context, err error, fallback string) {
	ctx.AbortWithStatusJSON(envelopeFor(ctx, err, fallback))
}

func envelopeFor(ctx *gin.Context, err error, fallback string) (int, Envelope) {
	appErr := apperr.From(err, fallback)

	body := Envelope{
		Code:    appErr.Status(),
		Status:  StatusError,
		Message: appErr.Message,
		Details: appErr.Details,
	}

	switch appErr.Kind {
	case apperr.KindInternal:
		slog.ErrorContext(ctx.Request.Context(), appErr.Message,
			slog.String("path", ctx.FullPath()),
			slog.Any("error", appErr.Err),
		)
		if ExposeCause && appErr.Err != nil {
			body.Cause = appErr.Err.Error()
		}
	case apperr.KindUpload:
		slog.WarnContext(ctx.Request.Context(), appErr.Message, slog.Any("error", appErr.Err))
		if appErr.Err != nil {
			body.Cause = appErr.Err.Error()
		}
	}

	return appErr.Status(), body
}
