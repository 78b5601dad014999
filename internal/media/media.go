// Package media serves published video files with byte-range support.
// It never consults entitlement: callers gate access before routing a
// request here.
package media

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Published media is immutable, so clients may cache it for a year.
const cacheControl = "public, max-age=31536000"

// ServeFile streams path to the client. A Range header of the form
// bytes=<start>-<end> (end optional) gets a 206 with exactly the
// requested span; otherwise the full file is sent with a 200. The span
// is seeked and copied, never read whole into memory.
func ServeFile(w http.ResponseWriter, r *http.Request, path string) {
	f, err := os.Open(path)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Video not found")
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil || st.IsDir() {
		writeMessage(w, http.StatusNotFound, "Video not found")
		return
	}
	size := st.Size()

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Cache-Control", cacheControl)
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = io.Copy(w, f)
		}
		return
	}

	start, end, ok := parseRange(rangeHeader, size)
	if !ok {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		writeMessage(w, http.StatusRequestedRangeNotSatisfiable, "Invalid range")
		return
	}

	length := end - start + 1
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Seek failed")
		return
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusPartialContent)
	if r.Method != http.MethodHead {
		_, _ = io.CopyN(w, f, length)
	}
}

// parseRange handles the single-span bytes=<start>-<end> form, with end
// defaulting to the last byte and clamped to the file size.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	spec, found := strings.CutPrefix(header, "bytes=")
	if !found {
		return 0, 0, false
	}
	first, last, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}

	end = size - 1
	if s := strings.TrimSpace(last); s != "" {
		end, err = strconv.ParseInt(s, 10, 64)
		if err != nil || end < start {
			return 0, 0, false
		}
		if end >= size {
			end = size - 1
		}
	}
	return start, end, true
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"message":%q}`, msg)
}
