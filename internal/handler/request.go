package handler

// REQUEST DECODING:
// The mobile client sends some requests as JSON and others (anything with an
// image) as multipart/form-data. Handlers don't care which: readForm turns
// either into a requestForm, and fields are read by name.
//
// FIELD ALIASES:
// Older client builds use Portuguese field names (nome, senha, texto, ...).
// Every lookup takes the English name first and the alias second, so when a
// request carries both, the English one wins.

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/auth"
	"github.com/sakif/recipe-share/internal/repository"
	"github.com/sakif/recipe-share/internal/service"
)

// Field names as sent by the client, paired with their legacy alias.
var (
	fieldName        = []string{"name", "nome"}
	fieldEmail       = []string{"email"}
	fieldPassword    = []string{"password", "senha"}
	fieldIngredients = []string{"ingredients", "ingredientes"}
	fieldSteps       = []string{"steps", "modoPreparo"}
	fieldText        = []string{"text", "texto"}
	fieldImage       = []string{"image", "imagem"}
	fieldPhoto       = []string{"photo", "foto"}
)

// requestForm is a decoded request body: string values plus, for multipart
// requests, uploaded files.
type requestForm struct {
	values    map[string]string
	multipart *multipart.Form
	open      []multipart.File
}

// readForm decodes the body of r according to its Content-Type.
// maxBytes caps the whole body; exceeding it is a validation error.
// Callers must Close the returned form.
func readForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*requestForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	form := &requestForm{values: make(map[string]string)}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, bodyError(err)
		}
		form.multipart = r.MultipartForm
		for key, vals := range r.MultipartForm.Value {
			if len(vals) > 0 {
				form.values[key] = vals[0]
			}
		}

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		for key := range r.PostForm {
			form.values[key] = r.PostForm.Get(key)
		}

	default:
		// JSON, or no body at all. Non-string values are ignored: every
		// field the API accepts is text.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return form, nil
			}
			return nil, bodyError(err)
		}
		for key, msg := range raw {
			var s string
			if json.Unmarshal(msg, &s) == nil {
				form.values[key] = s
			}
		}
	}

	return form, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.ValidationFailed("", "request body too large")
	}
	return apperror.ValidationFailed("", "invalid request body")
}

// value returns the first of names present in the form.
func (f *requestForm) value(names []string) (string, bool) {
	for _, name := range names {
		if v, ok := f.values[name]; ok {
			return v, true
		}
	}
	return "", false
}

// get is value without the presence flag.
func (f *requestForm) get(names []string) string {
	v, _ := f.value(names)
	return v
}

// optional returns a pointer to the value, or nil when absent.
func (f *requestForm) optional(names []string) *string {
	v, ok := f.value(names)
	if !ok {
		return nil
	}
	return &v
}

// file opens the first uploaded file under any of names. It returns nil when
// the request carries no such file.
func (f *requestForm) file(names []string) (*service.Upload, error) {
	if f.multipart == nil {
		return nil, nil
	}
	for _, name := range names {
		headers := f.multipart.File[name]
		if len(headers) == 0 {
			continue
		}
		file, err := headers[0].Open()
		if err != nil {
			return nil, err
		}
		f.open = append(f.open, file)
		return &service.Upload{Filename: headers[0].Filename, Body: file}, nil
	}
	return nil, nil
}

// Close releases opened files and any multipart temp files on disk.
func (f *requestForm) Close() {
	for _, file := range f.open {
		file.Close()
	}
	if f.multipart != nil {
		f.multipart.RemoveAll()
	}
}

// pathID parses the {id} URL parameter. A non-numeric id can never match a
// row, so it is reported as the resource not being found.
func pathID(r *http.Request, resource string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NotFound(resource)
	}
	return id, nil
}

// listOptions reads the optional ?limit=&offset= query parameters.
// Absent parameters mean "everything from the start".
func listOptions(r *http.Request) (repository.ListOptions, error) {
	var opts repository.ListOptions
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, apperror.ValidationFailed("limit", "limit must be a number")
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, apperror.ValidationFailed("offset", "offset must be a number")
		}
		opts.Offset = n
	}
	return opts, nil
}

// currentUser returns the id RequireAuth stored in the context.
func currentUser(r *http.Request) (int64, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return 0, apperror.Unauthorized("token not provided")
	}
	return userID, nil
}
