package nos

// HTTP methods
const (
	HTTPMethodHead   = "HEAD"
	HTTPMethodGet    = "GET"
	HTTPMethodPost   = "POST"
	HTTPMethodPut    = "PUT"
	HTTPMethodDelete = "DELETE"
)

// NOS headers
const (
	HeaderNosPrefix     string = "x-nos-"
	HeaderNosMetaPrefix        = "x-nos-meta-"
	HeaderNosRequestID         = "x-nos-request-id"
	HeaderNosCopySource        = "x-nos-copy-source"
	HeaderNosMoveSource        = "x-nos-move-source"
	HeaderNosObjectMD5         = "x-nos-Object-md5"
)

// HTTP headers
const (
	HTTPHeaderAuthorization string = "Authorization"
	HTTPHeaderContentLength        = "Content-Length"
	HTTPHeaderContentMD5           = "Content-MD5"
	HTTPHeaderContentRange         = "Content-Range"
	HTTPHeaderContentType          = "Content-Type"
	HTTPHeaderDate                 = "Date"
	HTTPHeaderEtag                 = "ETag"
	HTTPHeaderExpires              = "Expires"
	HTTPHeaderLastModified         = "Last-Modified"
	HTTPHeaderRange                = "Range"
	HTTPHeaderUserAgent            = "User-Agent"
)
