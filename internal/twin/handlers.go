package twin

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

const defaultPageSize = 50

// collection is the server side of one resource kind.
type collection struct {
	kind     *twilio.Kind
	store    *Store[Record]
	validate func(url.Values) *validationError
	defaults Record
}

type validationError struct {
	code    int
	message string
}

func newCollection(kind *twilio.Kind) *collection {
	prefix := kind.SidPrefix
	if prefix == "" {
		prefix = strings.ToUpper(kind.Name[:2])
	}
	c := &collection{kind: kind, store: NewStore[Record](prefix)}
	switch kind {
	case twilio.Message, twilio.SMS:
		c.validate = validateMessage
		c.defaults = Record{"status": "queued", "direction": "outbound-api", "num_segments": "1", "num_media": "0", "price_unit": "USD"}
	case twilio.IncomingPhoneNumber, twilio.OutgoingCallerId:
		c.validate = validatePhoneNumber
	case twilio.Call:
		c.validate = validateCall
		c.defaults = Record{"status": "queued", "direction": "outbound-api"}
	case twilio.Account:
		c.defaults = Record{"status": "active", "type": "Full"}
	case twilio.Queue:
		c.defaults = Record{"current_size": "0", "max_size": "100"}
	}
	return c
}

// routes mounts the REST API and the admin extras.
func (t *Twin) routes() {
	t.Router.Route("/"+twilio.DefaultAPIVersion, func(r chi.Router) {
		r.Use(t.basicAuth)

		for _, c := range t.collections {
			if c.kind.Root {
				r.Get("/Accounts.json", t.list(c))
				r.Post("/Accounts.json", t.create(c))
				r.Get("/Accounts/{AccountSid}.json", t.get(c))
				r.Post("/Accounts/{AccountSid}.json", t.update(c))
				continue
			}
			base := "/Accounts/{AccountSid}/" + c.kind.Collection
			r.Get(base+".json", t.list(c))
			r.Post(base+".json", t.create(c))
			r.Get(base+"/{Sid}.json", t.get(c))
			r.Post(base+"/{Sid}.json", t.update(c))
			r.Put(base+"/{Sid}.json", t.update(c))
			r.Delete(base+"/{Sid}.json", t.delete(c))
		}
	})

	r := t.Router
	r.Get("/admin/requests", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]any{"requests": t.Requests()})
	})
	r.Get("/admin/state", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, t.Snapshot())
	})
	r.Get("/admin/callbacks", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]any{
			"queued":     t.callbacks.Queued(),
			"deliveries": t.callbacks.Deliveries(),
		})
	})
	r.Post("/admin/callbacks/flush", func(w http.ResponseWriter, r *http.Request) {
		if err := t.callbacks.Flush(r.Context()); err != nil {
			APIError(w, http.StatusBadGateway, 11200, err.Error())
			return
		}
		JSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Post("/admin/reset", func(w http.ResponseWriter, r *http.Request) {
		t.Reset()
		JSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
}

// basicAuth validates Basic credentials (AccountSID:AuthToken). Without a
// configured account any non-empty pair is accepted.
func (t *Twin) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		switch {
		case !ok || user == "" || pass == "",
			t.Config.AccountSID != "" && user != t.Config.AccountSID,
			t.Config.AuthToken != "" && pass != t.Config.AuthToken:
			w.Header().Set("WWW-Authenticate", `Basic realm="Twilio API"`)
			APIError(w, http.StatusUnauthorized, 20003, "Authenticate")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accountSID returns the account a request is scoped to, rejecting paths
// that name an account other than the authenticated one.
func accountSID(w http.ResponseWriter, r *http.Request, c *collection) (string, bool) {
	user, _, _ := r.BasicAuth()
	if c.kind.Root {
		return user, true
	}
	sid := chi.URLParam(r, "AccountSid")
	if sid != user {
		APIError(w, http.StatusUnauthorized, 20003, "Authenticate")
		return "", false
	}
	return sid, true
}

func memberSID(r *http.Request, c *collection) string {
	if c.kind.Root {
		return chi.URLParam(r, "AccountSid")
	}
	return chi.URLParam(r, "Sid")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	APIError(w, http.StatusNotFound, 20404,
		fmt.Sprintf("The requested resource %s was not found", r.URL.Path))
}

func (t *Twin) create(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := accountSID(w, r, c)
		if !ok {
			return
		}
		params, err := parseParams(r)
		if err != nil {
			APIError(w, http.StatusBadRequest, 21601, "Unable to parse request: "+err.Error())
			return
		}
		if c.validate != nil {
			if verr := c.validate(params); verr != nil {
				APIError(w, http.StatusBadRequest, verr.code, verr.message)
				return
			}
		}

		now := t.now().Format(time.RFC1123Z)
		sid := c.store.NextID()
		rec := Record{}
		for k, v := range c.defaults {
			rec[k] = v
		}
		for k := range params {
			rec[twilio.Underscore(k)] = params.Get(k)
		}
		rec["sid"] = sid
		rec["date_created"] = now
		rec["date_updated"] = now
		rec["api_version"] = twilio.DefaultAPIVersion
		if c.kind.Root {
			rec["owner_account_sid"] = account
			rec["uri"] = "/" + twilio.DefaultAPIVersion + c.kind.MemberPath("", sid)
		} else {
			rec["account_sid"] = account
			rec["uri"] = "/" + twilio.DefaultAPIVersion + c.kind.MemberPath(account, sid)
		}

		c.store.Set(sid, rec)
		if _, ok := callbackPrefix[c.kind]; ok {
			t.callbacks.Enqueue(params.Get("StatusCallback"), statusCallback(c.kind, account, rec))
		}
		JSON(w, http.StatusCreated, rec)
	}
}

func (t *Twin) get(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := accountSID(w, r, c)
		if !ok {
			return
		}
		rec, found := c.store.Get(memberSID(r, c))
		if !found || !ownedBy(rec, c, account) {
			notFound(w, r)
			return
		}
		JSON(w, http.StatusOK, rec)
	}
}

func (t *Twin) update(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := accountSID(w, r, c)
		if !ok {
			return
		}
		sid := memberSID(r, c)
		existing, found := c.store.Get(sid)
		if !found || !ownedBy(existing, c, account) {
			notFound(w, r)
			return
		}
		params, err := parseParams(r)
		if err != nil {
			APIError(w, http.StatusBadRequest, 21601, "Unable to parse request: "+err.Error())
			return
		}
		if v := params.Get("PhoneNumber"); v != "" && !strings.HasPrefix(v, "+") {
			APIError(w, http.StatusBadRequest, 21211, "Invalid Number")
			return
		}

		rec := make(Record, len(existing)+len(params))
		for k, v := range existing {
			rec[k] = v
		}
		for k := range params {
			switch key := twilio.Underscore(k); key {
			case "sid", "account_sid", "uri", "date_created":
			default:
				rec[key] = params.Get(k)
			}
		}
		rec["date_updated"] = t.now().Format(time.RFC1123Z)

		c.store.Set(sid, rec)
		JSON(w, http.StatusOK, rec)
	}
}

func (t *Twin) delete(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := accountSID(w, r, c)
		if !ok {
			return
		}
		sid := memberSID(r, c)
		rec, found := c.store.Get(sid)
		if !found || !ownedBy(rec, c, account) {
			notFound(w, r)
			return
		}
		c.store.Delete(sid)
		w.WriteHeader(http.StatusNoContent)
	}
}

// list handles collection GETs. Page and PageSize select a page; every other
// query parameter is an equality filter on the underscored field.
func (t *Twin) list(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := accountSID(w, r, c)
		if !ok {
			return
		}
		q := r.URL.Query()
		pageNum, _ := strconv.Atoi(q.Get("Page"))
		pageSize, _ := strconv.Atoi(q.Get("PageSize"))
		if pageNum < 0 {
			pageNum = 0
		}
		if pageSize <= 0 {
			pageSize = defaultPageSize
		}
		q.Del("Page")
		q.Del("PageSize")

		matched := c.store.Filter(func(_ string, rec Record) bool {
			if !ownedBy(rec, c, account) {
				return false
			}
			for k := range q {
				if fmt.Sprint(rec[twilio.Underscore(k)]) != q.Get(k) {
					return false
				}
			}
			return true
		})
		items := page(matched, pageNum, pageSize)

		uri := func(p int) string {
			v := url.Values{}
			for k := range q {
				v.Set(k, q.Get(k))
			}
			v.Set("Page", strconv.Itoa(p))
			v.Set("PageSize", strconv.Itoa(pageSize))
			return r.URL.Path + "?" + v.Encode()
		}
		var next, prev any
		if (pageNum+1)*pageSize < len(matched) {
			next = uri(pageNum + 1)
		}
		if pageNum > 0 {
			prev = uri(pageNum - 1)
		}
		lastPage := 0
		if len(matched) > 0 {
			lastPage = (len(matched) - 1) / pageSize
		}

		JSON(w, http.StatusOK, map[string]any{
			c.kind.ListKey:      items,
			"page":              pageNum,
			"num_pages":         lastPage + 1,
			"page_size":         pageSize,
			"total":             len(matched),
			"start":             pageNum * pageSize,
			"end":               pageNum*pageSize + len(items) - 1,
			"uri":               uri(pageNum),
			"first_page_uri":    uri(0),
			"last_page_uri":     uri(lastPage),
			"next_page_uri":     next,
			"previous_page_uri": prev,
		})
	}
}

func ownedBy(rec Record, c *collection, account string) bool {
	if c.kind.Root {
		return rec["sid"] == account || rec["owner_account_sid"] == account
	}
	return rec["account_sid"] == account
}

// parseParams reads form-encoded or JSON request bodies into url.Values.
func parseParams(r *http.Request) (url.Values, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		var doc map[string]any
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			return nil, err
		}
		v := make(url.Values, len(doc))
		for k, val := range doc {
			v.Set(k, fmt.Sprint(val))
		}
		return v, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}

func validateMessage(p url.Values) *validationError {
	switch {
	case p.Get("To") == "":
		return &validationError{21604, "A 'To' phone number is required."}
	case !strings.HasPrefix(p.Get("To"), "+"):
		return &validationError{21211, "Invalid Number"}
	case p.Get("From") == "" && p.Get("MessagingServiceSid") == "":
		return &validationError{21603, "A 'From' phone number is required."}
	case p.Get("Body") == "" && p.Get("MediaUrl") == "":
		return &validationError{21602, "Message body is required."}
	}
	return nil
}

func validatePhoneNumber(p url.Values) *validationError {
	number := p.Get("PhoneNumber")
	switch {
	case number == "" && p.Get("AreaCode") == "":
		return &validationError{21452, "A 'PhoneNumber' or 'AreaCode' is required."}
	case number != "" && !strings.HasPrefix(number, "+"):
		return &validationError{21211, "Invalid Number"}
	}
	return nil
}

func validateCall(p url.Values) *validationError {
	switch {
	case p.Get("To") == "":
		return &validationError{21201, "No 'To' number is specified"}
	case p.Get("From") == "":
		return &validationError{21213, "No 'From' number is specified"}
	case p.Get("Url") == "" && p.Get("ApplicationSid") == "" && p.Get("Twiml") == "":
		return &validationError{21205, "Url parameter is required."}
	}
	return nil
}
