package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"calassist/internal"
)

const keyProperty = "appCreatedKey"

type Client struct {
	oauthCfg *oauth2.Config
	auth     []byte

	// SendUpdates controls invitee notifications: "all", "externalOnly"
	// or "none".
	SendUpdates string
	Verbose     bool
}

// NewClient builds a client from the OAuth client credentials JSON and,
// optionally, a previously stored token (nil before Login).
func NewClient(credJSON, auth []byte) (*Client, error) {
	oauthCfg, err := google.ConfigFromJSON(credJSON,
		calendar.CalendarScope,
		calendar.CalendarSettingsReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %v", err)
	}

	return &Client{
		oauthCfg: oauthCfg,
		auth:     auth,
	}, nil
}

const defaultSleep = 5 * time.Second

func (c *Client) Login(ctx context.Context, promptURL func(authURL string)) ([]byte, error) {
	state := fmt.Sprintf("calassist-%d", time.Now().UTC().Nanosecond())
	authURL := c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	promptURL(authURL)

	mux := http.NewServeMux()
	server := &http.Server{
		Addr:    ":8080",
		Handler: mux,
	}

	var (
		token   *oauth2.Token
		authErr error
	)

	mux.HandleFunc("/calassist", func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			go server.Shutdown(ctx)
		}()

		query := req.URL.Query()
		if query.Get("state") != state {
			authErr = errors.New("oauth link is not valid")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		token, authErr = c.oauthCfg.Exchange(ctx, query.Get("code"))
		if authErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Unable to retrieve token:", authErr)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "All good, you can close this window!")
	})

	serverCh := make(chan struct{})
	var svrErr error
	go func() {
		svrErr = server.ListenAndServe()
		close(serverCh)
	}()

	<-serverCh

	if svrErr != nil && svrErr != http.ErrServerClosed {
		return nil, svrErr
	}
	if authErr != nil {
		return nil, authErr
	}

	c.auth, authErr = json.Marshal(token)
	return c.auth, authErr
}

// Email returns the address of the logged-in account. The primary
// calendar's id is that address, which keeps this within the calendar
// scopes we already hold.
func (c *Client) Email(ctx context.Context) (string, error) {
	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return "", err
	}
	cal, err := svc.Calendars.Get("primary").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return cal.Id, nil
}

func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*internal.RemoteEvent, error) {
	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return nil, err
	}
	gevent, err := svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		if isGone(err) {
			return nil, fmt.Errorf("google: event %s: %w", eventID, internal.ErrNotFound)
		}
		return nil, err
	}
	return fromGoogle(gevent), nil
}

func (c *Client) FindByKey(ctx context.Context, calendarID, key string) (*internal.RemoteEvent, error) {
	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return nil, err
	}

	events, err := svc.Events.List(calendarID).
		Context(ctx).
		PrivateExtendedProperty(keyProperty + "=" + key).
		MaxResults(1).
		SingleEvents(false).
		ShowDeleted(false).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) == 0 {
		return nil, nil
	}
	return fromGoogle(events.Items[0]), nil
}

func (c *Client) FindByGlobalUID(ctx context.Context, calendarID, globalUID string) ([]*internal.RemoteEvent, error) {
	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return nil, err
	}

	events, err := svc.Events.List(calendarID).
		Context(ctx).
		ICalUID(globalUID).
		ShowDeleted(false).
		Do()
	if err != nil {
		return nil, err
	}

	res := make([]*internal.RemoteEvent, len(events.Items))
	for i, item := range events.Items {
		res[i] = fromGoogle(item)
	}
	return res, nil
}

func (c *Client) InsertEvent(ctx context.Context, calendarID string, ev *internal.CanonicalEvent, key string) (*internal.RemoteEvent, error) {
	msg := fmt.Sprintf("creating event: %q on %s... ", ev.Title, ev.StartISO())
	defer func() {
		c.logf(calendarID, msg)
	}()

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		msg += "failed"
		return nil, err
	}

	for {
		gevent, err := svc.Events.
			Insert(calendarID, eventBody(ev, key)).
			SendUpdates(c.sendUpdates()).
			Context(ctx).
			Do()
		if err == nil {
			msg += "done"
			return fromGoogle(gevent), nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		msg += "failed"
		return nil, err
	}
}

func (c *Client) PatchEvent(ctx context.Context, calendarID, eventID string, ev *internal.CanonicalEvent, key string) (*internal.RemoteEvent, error) {
	msg := fmt.Sprintf("updating event: %q on %s... ", ev.Title, ev.StartISO())
	defer func() {
		c.logf(calendarID, msg)
	}()

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		msg += "failed"
		return nil, err
	}

	for {
		gevent, err := svc.Events.
			Patch(calendarID, eventID, eventBody(ev, key)).
			SendUpdates(c.sendUpdates()).
			Context(ctx).
			Do()
		if err == nil {
			msg += "done"
			return fromGoogle(gevent), nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		msg += "failed"
		return nil, err
	}
}

func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	msg := fmt.Sprintf("deleting event %s... ", eventID)
	defer func() {
		c.logf(calendarID, msg)
	}()

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		msg += "failed"
		return err
	}
	for {
		err = svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
		if err == nil {
			msg += "done"
			return nil
		}
		if isGone(err) {
			msg += "already gone"
			return fmt.Errorf("google: event %s: %w", eventID, internal.ErrNotFound)
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		msg += "failed"
		return err
	}
}

func (c *Client) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]*internal.RemoteEvent, error) {
	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return nil, err
	}

	call := svc.Events.List(calendarID).
		Context(ctx).
		SingleEvents(true).
		OrderBy("startTime").
		ShowDeleted(false)
	if !from.IsZero() {
		call = call.TimeMin(from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		call = call.TimeMax(to.Format(time.RFC3339))
	}

	var (
		res           []*internal.RemoteEvent
		nextPageToken string
	)
	for {
		events, err := call.PageToken(nextPageToken).Do()
		if err != nil {
			if shouldRetry(err) {
				time.Sleep(defaultSleep)
				continue
			}
			return nil, err
		}
		for _, item := range events.Items {
			res = append(res, fromGoogle(item))
		}
		nextPageToken = events.NextPageToken
		if nextPageToken == "" {
			return res, nil
		}
	}
}

// EnsureCalendar resolves nameOrID to a calendar id. Ids ("primary" or
// anything with an "@") pass through. A display name is matched against
// the account's calendar list, case-insensitively; when nothing matches
// a new calendar is created under that name.
func (c *Client) EnsureCalendar(ctx context.Context, nameOrID, timezone string) (string, error) {
	if nameOrID == "" || nameOrID == "primary" || strings.Contains(nameOrID, "@") {
		if nameOrID == "" {
			nameOrID = "primary"
		}
		return nameOrID, nil
	}

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return "", err
	}
	return c.ensureCalendar(ctx, svc, nameOrID, timezone)
}

func (c *Client) ensureCalendar(ctx context.Context, svc *calendar.Service, nameOrID, timezone string) (string, error) {
	var nextPageToken string
	for {
		list, err := svc.CalendarList.List().Context(ctx).PageToken(nextPageToken).Do()
		if err != nil {
			return "", err
		}
		for _, item := range list.Items {
			if strings.EqualFold(item.Summary, nameOrID) {
				return item.Id, nil
			}
		}
		nextPageToken = list.NextPageToken
		if nextPageToken == "" {
			break
		}
	}

	created, err := svc.Calendars.Insert(&calendar.Calendar{
		Summary:  nameOrID,
		TimeZone: timezone,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("google: creating calendar %q: %w", nameOrID, err)
	}
	c.logf(created.Id, "created calendar %q", nameOrID)

	// Make the new calendar visible in the account's list and give it
	// default reminders. Both are cosmetic, so failures are logged and
	// not fatal.
	_, err = svc.CalendarList.Insert(&calendar.CalendarListEntry{Id: created.Id}).Context(ctx).Do()
	if err != nil {
		c.logf(created.Id, "unable to add calendar to list: %v", err)
	}
	_, err = svc.CalendarList.Patch(created.Id, &calendar.CalendarListEntry{
		DefaultReminders: calendarReminderDefaults,
	}).Context(ctx).Do()
	if err != nil {
		c.logf(created.Id, "unable to set default reminders: %v", err)
	}
	return created.Id, nil
}

// DefaultTimezone asks the account for its timezone setting, falling
// back to the primary calendar's zone and finally UTC.
func (c *Client) DefaultTimezone(ctx context.Context) (string, error) {
	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return "", err
	}

	setting, err := svc.Settings.Get("timezone").Context(ctx).Do()
	if err == nil && setting.Value != "" {
		return setting.Value, nil
	}

	cal, err := svc.Calendars.Get("primary").Context(ctx).Do()
	if err == nil && cal.TimeZone != "" {
		return cal.TimeZone, nil
	}
	return "UTC", nil
}

func (c *Client) calendarSvc(ctx context.Context) (*calendar.Service, error) {
	if len(c.auth) == 0 {
		return nil, errors.New("google: not logged in")
	}
	var tok *oauth2.Token
	err := json.Unmarshal(c.auth, &tok)
	if err != nil {
		return nil, err
	}
	return calendar.NewService(ctx, option.WithHTTPClient(c.oauthCfg.Client(ctx, tok)))
}

func (c *Client) sendUpdates() string {
	if c.SendUpdates == "" {
		return "all"
	}
	return c.SendUpdates
}

func (c *Client) logf(calendarID string, format string, a ...any) {
	if c.Verbose {
		internal.Logf(os.Stdout, "google:", calendarID, format, a...)
	}
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded")
}

func isGone(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone {
			return true
		}
	}
	return errIsReason(err, "deleted")
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, err := range gErr.Errors {
		switch err.Reason {
		case reason:
			return true
		}
	}
	return false
}
