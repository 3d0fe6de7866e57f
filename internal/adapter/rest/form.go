package rest

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
)

const (
	imagesField = "images"
	dataField   = "data"
	// multipartMemory is the part of a form kept in memory, the rest spills to disk.
	multipartMemory = 32 << 20
)

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func parseMultipart(r *http.Request) (*multipart.Form, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, tooLarge
		}
		return nil, fmt.Errorf("%w: invalid multipart form: %v", domain.ErrValidation, err)
	}
	return r.MultipartForm, nil
}

// mediaFiles reads the uploaded images in form order. The declared content
// type wins; it is sniffed only when the client sent none.
func mediaFiles(form *multipart.Form) ([]domain.MediaFile, error) {
	headers := form.File[imagesField]
	files := make([]domain.MediaFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: cannot open %s: %v", domain.ErrValidation, fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: cannot read %s: %v", domain.ErrValidation, fh.Filename, err)
		}
		ct := fh.Header.Get("Content-Type")
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(data)
		}
		files = append(files, domain.MediaFile{Filename: fh.Filename, ContentType: ct, Data: data})
	}
	return files, nil
}

// formReader converts multipart text fields into typed values. The first
// conversion error is kept and later ones are ignored.
type formReader struct {
	values url.Values
	err    error
}

func (f *formReader) value(name string) (string, bool) {
	vs, ok := f.values[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return strings.TrimSpace(vs[0]), true
}

func (f *formReader) text(name string) *string {
	v, ok := f.value(name)
	if !ok {
		return nil
	}
	return &v
}

func (f *formReader) number(name string) *float64 {
	v, ok := f.value(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.fail(name, "a number", v)
		return nil
	}
	return &n
}

func (f *formReader) integer(name string) *int {
	v, ok := f.value(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.fail(name, "an integer", v)
		return nil
	}
	return &n
}

func (f *formReader) boolean(name string) *bool {
	v, ok := f.value(name)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		f.fail(name, "true or false", v)
		return nil
	}
	return &b
}

func (f *formReader) fail(name, want, got string) {
	if f.err == nil {
		f.err = fmt.Errorf("%w: %s must be %s, got %q", domain.ErrValidation, name, want, got)
	}
}

func createInputFromForm(values url.Values) (domain.CreatePropertyInput, error) {
	f := &formReader{values: values}
	in := domain.CreatePropertyInput{
		AcceptsPets:  f.boolean("acceptsPets"),
		IsActive:     f.boolean("isActive"),
		PriceLocal:   f.number("priceLocal"),
		PriceForeign: f.number("priceForeign"),
		Fees:         f.number("fees"),
		Rooms:        f.integer("rooms"),
		Bathrooms:    f.integer("bathrooms"),
		Environments: f.integer("environments"),
	}
	for dst, name := range map[*string]string{
		&in.Title:        "title",
		&in.Description:  "description",
		&in.Address:      "address",
		&in.Location:     "location",
		&in.Requirements: "requirements",
	} {
		if v := f.text(name); v != nil {
			*dst = *v
		}
	}
	if v := f.text("operationType"); v != nil {
		in.OperationType = domain.OperationType(*v)
	}
	return in, f.err
}

func patchFromForm(values url.Values) (domain.PropertyPatch, error) {
	f := &formReader{values: values}
	patch := domain.PropertyPatch{
		Title:        f.text("title"),
		Description:  f.text("description"),
		Address:      f.text("address"),
		Location:     f.text("location"),
		Requirements: f.text("requirements"),
		AcceptsPets:  f.boolean("acceptsPets"),
		IsActive:     f.boolean("isActive"),
		PriceLocal:   f.number("priceLocal"),
		PriceForeign: f.number("priceForeign"),
		Fees:         f.number("fees"),
		Rooms:        f.integer("rooms"),
		Bathrooms:    f.integer("bathrooms"),
		Environments: f.integer("environments"),
	}
	if v := f.text("operationType"); v != nil {
		op := domain.OperationType(*v)
		patch.OperationType = &op
	}
	if clearImages := f.boolean("clearImages"); clearImages != nil {
		patch.ClearImages = *clearImages
	}
	return patch, f.err
}
