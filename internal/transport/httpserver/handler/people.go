package handler

import (
	"errors"
	"net/http"
	"time"

	"family-directory-go/internal/domain/directory"
	"family-directory-go/internal/transport/httpserver/middleware"
)

type personRequest struct {
	FullName      string   `json:"fullName" validate:"required"`
	Nickname      *string  `json:"nickname"`
	MaidenName    *string  `json:"maidenName"`
	Gender        *string  `json:"gender"`
	IsLiving      *bool    `json:"isLiving"`
	BirthDate     *string  `json:"birthDate"`
	DeathDate     *string  `json:"deathDate"`
	BirthPlace    *string  `json:"birthPlace"`
	CurrentCity   *string  `json:"currentCity"`
	Biography     *string  `json:"biography"`
	CulturalNotes *string  `json:"culturalNotes"`
	Tags          []string `json:"tags"`
	LinkedUserID  *int     `json:"linkedUserId"`
}

type updatePersonRequest struct {
	FullName      *string   `json:"fullName"`
	Nickname      *string   `json:"nickname"`
	MaidenName    *string   `json:"maidenName"`
	Gender        *string   `json:"gender"`
	IsLiving      *bool     `json:"isLiving"`
	BirthDate     *string   `json:"birthDate"`
	DeathDate     *string   `json:"deathDate"`
	BirthPlace    *string   `json:"birthPlace"`
	CurrentCity   *string   `json:"currentCity"`
	Biography     *string   `json:"biography"`
	CulturalNotes *string   `json:"culturalNotes"`
	Tags          *[]string `json:"tags"`
	LinkedUserID  *int      `json:"linkedUserId"`
}

type personResponse struct {
	ID              int       `json:"id"`
	FullName        string    `json:"fullName"`
	Nickname        *string   `json:"nickname"`
	MaidenName      *string   `json:"maidenName"`
	Gender          *string   `json:"gender"`
	IsLiving        bool      `json:"isLiving"`
	BirthDate       *string   `json:"birthDate"`
	DeathDate       *string   `json:"deathDate"`
	BirthPlace      *string   `json:"birthPlace"`
	CurrentCity     *string   `json:"currentCity"`
	Biography       *string   `json:"biography"`
	CulturalNotes   *string   `json:"culturalNotes"`
	Tags            []string  `json:"tags"`
	CreatedByUserID *int      `json:"createdByUserId"`
	LinkedUserID    *int      `json:"linkedUserId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type personDetailResponse struct {
	personResponse
	Media             []mediaResponse        `json:"media"`
	RelationshipsFrom []relationshipResponse `json:"relationshipsFrom"`
	RelationshipsTo   []relationshipResponse `json:"relationshipsTo"`
}

func (h *Handlers) ListPeople(w http.ResponseWriter, r *http.Request) {
	filter := directory.ListPeopleFilter{
		Search: r.URL.Query().Get("search"),
		Tag:    r.URL.Query().Get("tag"),
	}

	living, err := parseBoolQuery(r.URL.Query().Get("living"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", "living must be true or false")
		return
	}
	filter.Living = living

	people, err := h.Directory.ListPeople(r.Context(), filter)
	if err != nil {
		h.log.InternalError("people.list: list failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	responses := make([]personResponse, 0, len(people))
	for i := range people {
		responses = append(responses, toPersonResponse(&people[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handlers) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid person id")
		return
	}

	detail, err := h.Directory.GetPerson(r.Context(), id)
	if err != nil {
		if errors.Is(err, directory.ErrPersonNotFound) {
			writeError(w, http.StatusNotFound, "person_not_found", "person not found")
			return
		}
		h.log.InternalError("people.get: get failed", err, "person_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toPersonDetailResponse(detail))
}

func (h *Handlers) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	input, err := toPersonInput(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "dates must use YYYY-MM-DD")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	person, err := h.Directory.CreatePerson(r.Context(), user.ID, input)
	if err != nil {
		if errors.Is(err, directory.ErrFullNameRequired) {
			writeFieldViolation(w, "fullName", "required")
			return
		}
		h.log.InternalError("people.create: create failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toPersonResponse(person))
}

func (h *Handlers) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid person id")
		return
	}

	var req updatePersonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	patch := directory.PersonPatch{
		FullName:      req.FullName,
		Nickname:      req.Nickname,
		MaidenName:    req.MaidenName,
		Gender:        req.Gender,
		IsLiving:      req.IsLiving,
		BirthPlace:    req.BirthPlace,
		CurrentCity:   req.CurrentCity,
		Biography:     req.Biography,
		CulturalNotes: req.CulturalNotes,
		Tags:          req.Tags,
		LinkedUserID:  req.LinkedUserID,
	}
	if patch.BirthDate, err = parseDateField(req.BirthDate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "birthDate must use YYYY-MM-DD")
		return
	}
	if patch.DeathDate, err = parseDateField(req.DeathDate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "deathDate must use YYYY-MM-DD")
		return
	}

	person, err := h.Directory.UpdatePerson(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, directory.ErrFullNameRequired) {
			writeFieldViolation(w, "fullName", "required")
			return
		}
		if errors.Is(err, directory.ErrPersonNotFound) {
			writeError(w, http.StatusNotFound, "person_not_found", "person not found")
			return
		}
		h.log.InternalError("people.update: update failed", err, "person_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toPersonResponse(person))
}

func (h *Handlers) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid person id")
		return
	}

	if err := h.Directory.DeletePerson(r.Context(), id); err != nil {
		if errors.Is(err, directory.ErrPersonNotFound) {
			writeError(w, http.StatusNotFound, "person_not_found", "person not found")
			return
		}
		h.log.InternalError("people.delete: delete failed", err, "person_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toPersonInput(req personRequest) (directory.PersonInput, error) {
	input := directory.PersonInput{
		FullName:      req.FullName,
		Nickname:      req.Nickname,
		MaidenName:    req.MaidenName,
		Gender:        req.Gender,
		IsLiving:      req.IsLiving,
		BirthPlace:    req.BirthPlace,
		CurrentCity:   req.CurrentCity,
		Biography:     req.Biography,
		CulturalNotes: req.CulturalNotes,
		Tags:          req.Tags,
		LinkedUserID:  req.LinkedUserID,
	}

	var err error
	if input.BirthDate, err = parseDateField(req.BirthDate); err != nil {
		return directory.PersonInput{}, err
	}
	if input.DeathDate, err = parseDateField(req.DeathDate); err != nil {
		return directory.PersonInput{}, err
	}
	return input, nil
}

func toPersonResponse(person *directory.Person) personResponse {
	return personResponse{
		ID:              person.ID,
		FullName:        person.FullName,
		Nickname:        person.Nickname,
		MaidenName:      person.MaidenName,
		Gender:          person.Gender,
		IsLiving:        person.IsLiving,
		BirthDate:       formatDate(person.BirthDate),
		DeathDate:       formatDate(person.DeathDate),
		BirthPlace:      person.BirthPlace,
		CurrentCity:     person.CurrentCity,
		Biography:       person.Biography,
		CulturalNotes:   person.CulturalNotes,
		Tags:            []string(person.Tags),
		CreatedByUserID: person.CreatedByUserID,
		LinkedUserID:    person.LinkedUserID,
		CreatedAt:       person.CreatedAt,
		UpdatedAt:       person.UpdatedAt,
	}
}

func toPersonDetailResponse(detail *directory.PersonDetail) personDetailResponse {
	response := personDetailResponse{
		personResponse:    toPersonResponse(&detail.Person),
		Media:             make([]mediaResponse, 0, len(detail.Media)),
		RelationshipsFrom: make([]relationshipResponse, 0, len(detail.RelationshipsFrom)),
		RelationshipsTo:   make([]relationshipResponse, 0, len(detail.RelationshipsTo)),
	}
	for i := range detail.Media {
		response.Media = append(response.Media, toMediaResponse(&detail.Media[i]))
	}
	for i := range detail.RelationshipsFrom {
		response.RelationshipsFrom = append(response.RelationshipsFrom, toRelationshipResponse(&detail.RelationshipsFrom[i]))
	}
	for i := range detail.RelationshipsTo {
		response.RelationshipsTo = append(response.RelationshipsTo, toRelationshipResponse(&detail.RelationshipsTo[i]))
	}
	return response
}
