package responses

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
	"github.com/VIERNES-8020/domino-backend/pkg/types"
)

// WriteSuccess writes data as a 200 JSON response.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

// WriteSuccessStatus writes data as JSON with the given status code.
func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data})
}

// WriteList wraps a page of results in the standard list envelope.
func WriteList(w http.ResponseWriter, data any, nextCursor *string) {
	WriteSuccessStatus(w, http.StatusOK, types.ListEnvelope{
		Data:       data,
		NextCursor: nextCursor,
	})
}

// WriteError maps an error to its HTTP representation and logs the full
// chain. Clients only ever see the code's public message unless the code
// allows details through.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	if logg != nil {
		dump := pkgerrors.Dump(err)
		fields := map[string]any{
			"error_code":  string(typed.Code()),
			"http_status": meta.HTTPStatus,
			"top_message": dump.TopMessage,
		}
		if len(dump.Chain) > 0 {
			fields["chain"] = dump.Chain
		}
		if dump.PGCode != "" {
			fields["pg_code"] = dump.PGCode
			fields["pg_message"] = dump.PGMessage
			fields["pg_detail"] = dump.PGDetail
			fields["pg_hint"] = dump.PGHint
			fields["pg_constraint"] = dump.PGConstraint
			fields["pg_table"] = dump.PGTable
			fields["pg_column"] = dump.PGColumn
		}
		if step := stepFromDetails(typed.Details()); step != "" {
			fields["step"] = step
		}
		logCtx := logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(logCtx, "request.error", err)
		} else {
			logg.Warn(logCtx, "request.error")
		}
	}

	body := types.APIError{
		Code:    string(typed.Code()),
		Message: meta.PublicMessage,
	}

	switch typed.Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeConflict, pkgerrors.CodeUpload, pkgerrors.CodeIdempotency:
		if msg := typed.Message(); msg != "" {
			body.Message = msg
		}
	}

	if meta.DetailsAllowed {
		body.Details = typed.Details()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: body})
}

func stepFromDetails(details any) string {
	m, ok := details.(map[string]any)
	if !ok {
		return ""
	}
	step, _ := m["step"].(string)
	return step
}
