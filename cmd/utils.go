package main

import (
	"mime/multipart"
	"net/http"

	"github.com/siahsang/socialite/internal/validator"
)

func checkEmail(v *validator.Validator, email string) {
	v.CheckNotBlank(email, "email", "must be provided")
	v.CheckEmail(email, "must be a valid email address")
}

// readImageUpload pulls the "image" part out of a multipart form.
// The caller owns closing the returned file.
func (app *application) readImageUpload(r *http.Request) (multipart.File, *multipart.FileHeader, *AppError) {
	if err := r.ParseMultipartForm(app.config.MaxUploadSize); err != nil {
		return nil, nil, &AppError{
			ErrorMessage: "Request must be a multipart form with an image field",
			ErrorStack:   err,
		}
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, nil, &AppError{
			ErrorMessage: "An image file must be provided",
			ErrorStack:   err,
		}
	}

	if header.Size > app.config.MaxUploadSize {
		file.Close()
		return nil, nil, &AppError{
			ErrorMessage: "Image exceeds the maximum upload size",
		}
	}

	return file, header, nil
}
