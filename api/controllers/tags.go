package controllers

import (
	"net/http"

	"github.com/angelmondragon/catalog-backend/api/middleware"
	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	"github.com/angelmondragon/catalog-backend/internal/tags"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

func StoreTagList(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		storeID, err := validators.PathID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForStore(r.Context(), middleware.ClaimsFromContext(r.Context()), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func StoreTagCreate(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		storeID, err := validators.PathID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body tags.CreateTagRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tag, err := svc.Create(r.Context(), middleware.ClaimsFromContext(r.Context()), storeID, body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, tag)
	}
}

func TagGet(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		id, err := validators.PathID(r, "tagId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tag, err := svc.Get(r.Context(), middleware.ClaimsFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tag)
	}
}

func TagDelete(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		id, err := validators.PathID(r, "tagId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.ClaimsFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusAccepted, "Tag deleted.")
	}
}

// ItemTagLink attaches a tag to an item and returns the tag.
func ItemTagLink(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		itemID, tagID, err := itemTagIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tag, err := svc.Link(r.Context(), middleware.ClaimsFromContext(r.Context()), itemID, tagID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tag)
	}
}

func ItemTagUnlink(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		itemID, tagID, err := itemTagIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Unlink(r.Context(), middleware.ClaimsFromContext(r.Context()), itemID, tagID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func itemTagIDs(r *http.Request) (uint, uint, error) {
	itemID, err := validators.PathID(r, "itemId")
	if err != nil {
		return 0, 0, err
	}
	tagID, err := validators.PathID(r, "tagId")
	if err != nil {
		return 0, 0, err
	}
	return itemID, tagID, nil
}
