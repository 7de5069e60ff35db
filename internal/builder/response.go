package builder

import (
	"net/http"
	"strconv"
)

// Content types used by builder responses.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Response is the terminal result of a builder request. The transport
// writes it; the builder never touches the connection itself.
type Response struct {
	Status      int
	ContentType string
	Body        string
}

func htmlResponse(body string) *Response {
	return &Response{Status: http.StatusOK, ContentType: ContentTypeHTML, Body: body}
}

func emptyResponse() *Response {
	return &Response{Status: http.StatusOK}
}

func pageNotFound() *Response {
	return &Response{Status: http.StatusNotFound, ContentType: ContentTypeText, Body: "Page not found"}
}

// Write sends the response.
func (r *Response) Write(w http.ResponseWriter) {
	if r.ContentType != "" {
		w.Header().Set("Content-Type", r.ContentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(r.Body)))
	w.WriteHeader(r.Status)
	if r.Body != "" {
		_, _ = w.Write([]byte(r.Body))
	}
}
