package util

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
)

func init() {
	NowTime = time.Now
	Sleep = time.Sleep
	SleepWithContext = sleepWithContext

	for i := 0; i < len(noEscape); i++ {
		noEscape[i] = (i >= 'A' && i <= 'Z') ||
			(i >= 'a' && i <= 'z') ||
			(i >= '0' && i <= '9') ||
			i == '-' ||
			i == '.' ||
			i == '_' ||
			i == '*'
	}
}

var NowTime func() time.Time

var Sleep func(time.Duration)

var SleepWithContext func(context.Context, time.Duration) error

var noEscape [256]bool

const (
	// The service verifies signatures against a fixed UTC+8 clock.
	cstOffset = 8 * time.Hour

	cstLayout = "Mon, 02 Jan 2006 15:04:05"
	cstLabel  = "Asia/Shanghai"
)

func sleepWithContext(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(dur)
	defer t.Stop()

	select {
	case <-t.C:
		break
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// FormatDate renders t the way the Date header is expected by NOS,
// e.g. "Thu, 15 May 2014 19:18:32 Asia/Shanghai".
func FormatDate(t time.Time) string {
	return t.UTC().Add(cstOffset).Format(cstLayout) + " " + cstLabel
}

// EscapePath percent-encodes every byte except A-Z a-z 0-9 - . _ and *.
// Slashes are encoded too.
func EscapePath(path string) string {
	var buf bytes.Buffer
	for i := 0; i < len(path); i++ {
		c := path[i]
		if noEscape[c] {
			buf.WriteByte(c)
		} else {
			fmt.Fprintf(&buf, "%%%02X", c)
		}
	}
	return buf.String()
}

// EscapeKey strips leading and trailing slashes from an object key and escapes the rest.
func EscapeKey(key string) string {
	return EscapePath(strings.Trim(key, "/"))
}
