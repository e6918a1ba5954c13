package main

import (
	"DiningApi/internal/validator"
	json2 "encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type envelope map[string]any

func (app *application) writeJSON(w http.ResponseWriter, status int, data any,
	headers http.Header) error {
	json, err := json2.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	json = append(json, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(json)
	if err != nil {
		return err
	}

	return nil
}

// writeJSONSeq streams seq as a JSON array, flushing after every element. The status line is
// only written once the first element (or the end of seq) arrives, so started reports whether an
// error can still be turned into an error response.
func writeJSONSeq[T any](w http.ResponseWriter, seq iter.Seq2[T, error]) (started bool, err error) {
	rc := http.NewResponseController(w)
	encoder := json2.NewEncoder(w)

	start := func() error {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		started = true
		_, err := io.WriteString(w, "[")
		return err
	}

	for item, err := range seq {
		if err != nil {
			return started, err
		}

		if !started {
			err = start()
		} else {
			_, err = io.WriteString(w, ",")
		}
		if err != nil {
			return started, err
		}

		if err := encoder.Encode(item); err != nil {
			return started, err
		}
		_ = rc.Flush()
	}

	if !started {
		if err := start(); err != nil {
			return started, err
		}
	}

	_, err = io.WriteString(w, "]\n")
	return started, err
}

// readJSON decodes exactly one JSON value from the request body into dest, rejecting unknown keys.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)

	decoder := json2.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return decodeError(err)
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

const maxJSONBytes = 1 << 20

// decodeError turns a json decoding failure into a message that is safe to show to the client.
func decodeError(err error) error {
	var (
		syntaxError           *json2.SyntaxError
		unmarshalTypeError    *json2.UnmarshalTypeError
		invalidUnmarshalError *json2.InvalidUnmarshalError
		maxBytesError         *http.MaxBytesError
	)

	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")
	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field == "" {
			return fmt.Errorf("body contains incorrect JSON type (at character %d)",
				unmarshalTypeError.Offset)
		}
		return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
	case errors.As(err, &maxBytesError):
		return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
	case errors.As(err, &invalidUnmarshalError):
		panic(err)
	default:
		return err
	}
}

func (app *application) readInt(qs url.Values, key string, defaultValue int, v *validator.Validator) int {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return defaultValue
	}

	return i
}

// baseURL is the configured public URL, or else the scheme and host the client used to reach
// the server.
func (app *application) baseURL(r *http.Request) string {
	if app.config.PublicURL != "" {
		return strings.TrimSuffix(app.config.PublicURL, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host
}

func (app *application) backgroundTask(task func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.PrintError(fmt.Errorf("%s", err), nil)
			}
		}()

		task()
	}()
}
