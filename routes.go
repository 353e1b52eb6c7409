package chatgpt

import (
	"net/http"
	"net/url"
	"strings"
)

// route describes one API endpoint relative to the base URL. Path segments
// written as {name} are replaced with escaped values at request time.
type route struct {
	method string
	path   string
}

var (
	routeCompletions     = route{http.MethodPost, "v1/completions"}
	routeChatCompletions = route{http.MethodPost, "v1/chat/completions"}
	routeEdits           = route{http.MethodPost, "v1/edits"}
	routeImages          = route{http.MethodPost, "v1/images/generations"}
	routeImageEdits      = route{http.MethodPost, "v1/images/edits"}
	routeEmbeddings      = route{http.MethodPost, "v1/embeddings"}
	routeModels          = route{http.MethodGet, "v1/models"}
	routeListFiles       = route{http.MethodGet, "v1/files"}
	routeUploadFile      = route{http.MethodPost, "v1/files"}
	routeDeleteFile      = route{http.MethodDelete, "v1/files/{file_id}"}
	routeGetFile         = route{http.MethodGet, "v1/files/{file_id}"}
	routeFileContent     = route{http.MethodGet, "v1/files/{file_id}/content"}
	routeTranscriptions  = route{http.MethodPost, "v1/audio/transcriptions"}
	routeTranslations    = route{http.MethodPost, "v1/audio/translations"}
	routeSubscription    = route{http.MethodGet, "v1/dashboard/billing/subscription"}
	routeBillingUsage    = route{http.MethodGet, "v1/dashboard/billing/usage"}
)

// expand fills in the route's path parameters. Unknown placeholders are left
// untouched so a missing parameter shows up in the request path.
func (r route) expand(params map[string]string) string {
	if len(params) == 0 || !strings.Contains(r.path, "{") {
		return r.path
	}

	p := r.path
	for k, v := range params {
		p = strings.ReplaceAll(p, "{"+k+"}", url.PathEscape(v))
	}
	return p
}

func (r route) String() string {
	return r.method + " " + r.path
}
