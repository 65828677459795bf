package utils

import (
	"io"
	"net/http"
)

// ReadUpload 读取 multipart 表单中的单个文件，失败时直接写回 400。
func ReadUpload(w http.ResponseWriter, r *http.Request, field string, limit int64) (filename, contentType string, data []byte, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	file, header, err := r.FormFile(field)
	if err != nil {
		RespondError(w, http.StatusBadRequest, field+" is required")
		return "", "", nil, false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "failed to read upload")
		return "", "", nil, false
	}

	contentType = header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return header.Filename, contentType, data, true
}
