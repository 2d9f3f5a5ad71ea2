package client

// MessageInvalidFile is shown when the selected file is not an image.
const MessageInvalidFile = "Please upload a valid image file (JPEG or PNG)."

const messageExtractionFailed = "Extraction failed."

// ValidationError is a client-side rejection; no request was sent.
type ValidationError struct {
	Message  string
	MimeType string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RequestError is a non-2xx answer from the gateway.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}
