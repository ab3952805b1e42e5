package handlers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"html/template"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/gorilla/schema"
	"github.com/nfnt/resize"

	"github.com/billionaireobi/adaladesigns/internal/api"
	"github.com/billionaireobi/adaladesigns/internal/models"
	"github.com/billionaireobi/adaladesigns/internal/session"
)

const maxUploadBytes = 10 << 20 // 10MB

var (
	formDecoder  = newFormDecoder()
	formValidate = validator.New()
)

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true) // csrf token field rides along
	return d
}

// designForm is the admin form state. Price stays a string so a blank field
// can be told apart from zero; blank means the field is omitted from the
// payload entirely.
type designForm struct {
	Title       string `schema:"title" validate:"required"`
	Description string `schema:"description"`
	Category    string `schema:"category" validate:"required,oneof=suits traditional custom shirts trousers jackets wedding"`
	Price       string `schema:"price"`
	Currency    string `schema:"currency" validate:"required,oneof=KES USD EUR"`
	RemoveImage bool   `schema:"remove_image"`
}

// validate returns one message per failing field. Runs entirely locally; no
// request is sent while any of these fail.
func (f *designForm) validate() map[string]string {
	errs := make(map[string]string)
	if err := formValidate.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.StructField() {
				case "Title":
					errs["Title"] = "Title is required."
				case "Category":
					errs["Category"] = "Select a valid category."
				case "Currency":
					errs["Currency"] = "Select a valid currency."
				}
			}
		}
	}
	if f.Price != "" {
		price, err := strconv.ParseFloat(f.Price, 64)
		if err != nil {
			errs["Price"] = "Invalid price format."
		} else if price < 0 {
			errs["Price"] = "Price cannot be negative."
		}
	}
	return errs
}

func (f *designForm) payload(img api.ImageUpdate) api.DesignPayload {
	return api.DesignPayload{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Category:    f.Category,
		Currency:    f.Currency,
		Price:       strings.TrimSpace(f.Price),
		Image:       img,
	}
}

// stagedImage is an uploaded file held in memory between parsing and
// submission.
type stagedImage struct {
	filename string
	data     []byte
}

// preview downsizes the staged file into an inline data URI so the form can
// show a local preview without any network round trip.
func (s *stagedImage) preview() (template.URL, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(filepath.Ext(s.filename)) {
	case ".png":
		img, err = png.Decode(bytes.NewReader(s.data))
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(s.data))
	default:
		return "", errors.New("unsupported image format")
	}
	if err != nil {
		return "", err
	}

	thumb := resize.Resize(240, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 70}); err != nil {
		return "", err
	}
	return template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

// parseDesignForm reads the multipart submission into form state, an
// optional staged image and field validation errors. ok=false means the
// request was rejected and a response already written.
func (h *AdminHandler) parseDesignForm(w http.ResponseWriter, r *http.Request) (*designForm, *stagedImage, map[string]string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Upload too large. Max 10MB.", http.StatusRequestEntityTooLarge)
		return nil, nil, nil, false
	}

	var form designForm
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		slog.Warn("Failed to decode design form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, nil, nil, false
	}

	errs := form.validate()

	var staged *stagedImage
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		data := make([]byte, 0, header.Size)
		buf := bytes.NewBuffer(data)
		if _, err := buf.ReadFrom(file); err != nil {
			errs["Image"] = "Failed to read uploaded image."
		} else {
			staged = &stagedImage{filename: header.Filename, data: buf.Bytes()}
			switch strings.ToLower(filepath.Ext(header.Filename)) {
			case ".png", ".jpg", ".jpeg":
			default:
				errs["Image"] = "Unsupported image format. Only PNG, JPG, JPEG are allowed."
				staged = nil
			}
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		errs["Image"] = "Failed to read uploaded image."
	}

	return &form, staged, errs, true
}

func (h *AdminHandler) renderDesignForm(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	data["CsrfField"] = csrf.TemplateField(r)
	data["Categories"] = models.Categories
	data["Currencies"] = models.Currencies
	if data["Errors"] == nil {
		data["Errors"] = map[string]string{}
	}
	h.Templates.Render(w, status, "design_form.html", data)
}

func (h *AdminHandler) NewDesignForm(w http.ResponseWriter, r *http.Request) {
	h.renderDesignForm(w, r, http.StatusOK, map[string]any{
		"Mode":   "create",
		"Values": &designForm{Currency: models.DefaultCurrency},
	})
}

func (h *AdminHandler) CreateDesign(w http.ResponseWriter, r *http.Request) {
	form, staged, errs, ok := h.parseDesignForm(w, r)
	if !ok {
		return
	}
	if len(errs) > 0 {
		h.renderFormErrors(w, r, "create", 0, form, staged, errs, "")
		return
	}

	img := api.ImageUpdate{Op: api.ImageKeep}
	if staged != nil {
		img = api.ImageUpdate{Op: api.ImageReplace, Filename: staged.filename, Data: bytes.NewReader(staged.data)}
	}

	token, _ := h.Sessions.Token(r)
	if _, err := h.API.CreateDesign(r.Context(), token, form.payload(img)); err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			h.expireSession(w, r)
			return
		}
		slog.Error("Failed to create design", "error", err)
		h.renderFormErrors(w, r, "create", 0, form, staged, nil, api.Message(err, "Failed to save design"))
		return
	}

	h.Catalogue.Invalidate()
	h.Sessions.AddFlash(w, r, session.Flash{Type: "success", Message: "Design created."})
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (h *AdminHandler) EditDesignForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid design id", http.StatusBadRequest)
		return
	}

	design, err := h.API.GetDesign(r.Context(), id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			h.Sessions.AddFlash(w, r, session.Flash{Type: "error", Message: "Design not found."})
		} else {
			slog.Error("Failed to load design for edit", "id", id, "error", err)
			h.Sessions.AddFlash(w, r, session.Flash{Type: "error", Message: "Failed to load design."})
		}
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	price := ""
	if design.Price != nil && *design.Price != 0 {
		price = strconv.FormatFloat(*design.Price, 'f', -1, 64)
	}
	data := map[string]any{
		"Mode":     "edit",
		"DesignID": id,
		"Values": &designForm{
			Title:       design.Title,
			Description: design.Description,
			Category:    design.Category,
			Price:       price,
			Currency:    design.Currency,
		},
	}
	// The stored remote image is the initial preview.
	if design.ImageURL != "" {
		data["Preview"] = template.URL(h.API.ImageURL(design.ImageURL))
	}
	h.renderDesignForm(w, r, http.StatusOK, data)
}

func (h *AdminHandler) UpdateDesign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid design id", http.StatusBadRequest)
		return
	}

	form, staged, errs, ok := h.parseDesignForm(w, r)
	if !ok {
		return
	}
	if len(errs) > 0 {
		h.renderFormErrors(w, r, "edit", id, form, staged, errs, "")
		return
	}

	// Image intent is explicit: a staged file replaces, the remove control
	// clears, otherwise the stored image stays untouched.
	img := api.ImageUpdate{Op: api.ImageKeep}
	switch {
	case staged != nil:
		img = api.ImageUpdate{Op: api.ImageReplace, Filename: staged.filename, Data: bytes.NewReader(staged.data)}
	case form.RemoveImage:
		img = api.ImageUpdate{Op: api.ImageClear}
	}

	token, _ := h.Sessions.Token(r)
	if err := h.API.UpdateDesign(r.Context(), token, id, form.payload(img)); err != nil {
		switch {
		case errors.Is(err, api.ErrSessionExpired):
			h.expireSession(w, r)
		case errors.Is(err, api.ErrNotFound):
			h.Sessions.AddFlash(w, r, session.Flash{Type: "error", Message: "Design not found."})
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		default:
			slog.Error("Failed to update design", "id", id, "error", err)
			h.renderFormErrors(w, r, "edit", id, form, staged, nil, api.Message(err, "Failed to save design"))
		}
		return
	}

	h.Catalogue.Invalidate()
	h.Sessions.AddFlash(w, r, session.Flash{Type: "success", Message: "Design updated."})
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// renderFormErrors re-renders the populated form after a local validation
// failure or a backend rejection. The staged image, if any, is shown as a
// locally generated preview.
func (h *AdminHandler) renderFormErrors(w http.ResponseWriter, r *http.Request, mode string, id int, form *designForm, staged *stagedImage, errs map[string]string, submitError string) {
	data := map[string]any{
		"Mode":   mode,
		"Values": form,
		"Errors": errs,
	}
	if id != 0 {
		data["DesignID"] = id
	}
	if submitError != "" {
		data["SubmitError"] = submitError
	}
	if staged != nil {
		if preview, err := staged.preview(); err == nil {
			data["Preview"] = preview
		}
	}
	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusUnprocessableEntity
	}
	h.renderDesignForm(w, r, status, data)
}
