package inquiry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"tourdesk/utils"
)

// Create handles POST /api/inquiries.
func (s *Service) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var sub Submission
	if err := utils.DecodeJSON(r, &sub); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inq, err := s.Submit(ctx, sub)
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, utils.M{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case err != nil:
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Could not send your inquiry, please try again")
	default:
		utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": inq.ID, "status": inq.Status})
	}
}
