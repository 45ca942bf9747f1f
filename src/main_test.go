package main

import (
	"clinic/src/booking"
	"clinic/src/config"
	"clinic/src/finalize"
	"clinic/src/lib"
	"clinic/src/middlewares"
	"clinic/src/tracking"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB        *gorm.DB
	Mock      sqlmock.Sqlmock
	Redis     redismock.ClientMock
	Reader    *stubReader
	Finalizer *stubFinalizer
	App       *app
	SID       string
}

type stubReader struct {
	intent *booking.BookingIntent
	err    error
}

func (s *stubReader) ReadBookingIntent(ctx context.Context, stripeSessionID string) (*booking.BookingIntent, error) {
	return s.intent, s.err
}

type stubFinalizer struct {
	res   *booking.FinalizeResult
	err   error
	calls int
}

func (s *stubFinalizer) FinalizeBooking(ctx context.Context, req booking.FinalizeRequest) (*booking.FinalizeResult, error) {
	s.calls++
	return s.res, s.err
}

type stubCheckout struct{}

func (stubCheckout) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	return nil, errors.New("stripe is not reachable in tests")
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

const (
	serviceSecret = "service-secret"
	webhookSecret = "whsec_test"
	sessionID     = "cs_test_a1B2c3D4e5F6g7H8i9J0kLmNoP"
)

func confirmedIntent() *booking.BookingIntent {
	return &booking.BookingIntent{
		ID:              "0f8fad5b-d9cb-469f-a165-70867728950e",
		StripeSessionID: sessionID,
		Status:          booking.StatusConfirmed,
		SelectedDate:    "2025-03-14",
		SelectedTime:    "14:30:00",
		PriceEuros:      95,
		ServiceType:     "Intake consult",
		CustomerName:    "Jan Jansen",
	}
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *TestSuite) SetupTest() {
	cfg := &config.Config{
		Env:                 "test",
		SessionTTL:          24 * time.Hour,
		ServiceJWTSecret:    serviceSecret,
		StripeWebhookSecret: webhookSecret,
		PixelID:             "pixel-1",
	}
	config.Set(cfg)

	s.DB, s.Mock = NewMockDB()
	rdb, rmock := redismock.NewClientMock()
	s.Redis = rmock
	s.Reader = &stubReader{}
	s.Finalizer = &stubFinalizer{}
	s.SID = uuid.NewString()

	logger := zap.NewNop()
	s.App = &app{
		cfg:       cfg,
		logger:    logger,
		reader:    s.Reader,
		finalizer: s.Finalizer,
		service:   finalize.NewService(s.DB, stubCheckout{}),
		emitter:   tracking.NewEmitter(tracking.NewLogSink(logger), tracking.NewRedisDedupeStore(rdb), cfg.PixelID, cfg.SessionTTL, logger),
		gate:      middlewares.NewGate(rdb, "", cfg.SessionTTL),
		qrcode: func(text string) (string, error) {
			return "data:image/jpeg;base64,qr-" + text, nil
		},
	}
}

func (s *TestSuite) router() *gin.Engine {
	router := setupRouter()
	router = maintenanceModeMiddleware(router, false)
	s.App.routes(router)
	return router
}

func (s *TestSuite) get(router *gin.Engine, target string, consent bool) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", target, nil)
	req.AddCookie(&http.Cookie{Name: middlewares.SessionCookie, Value: s.SID})
	if consent {
		req.AddCookie(&http.Cookie{Name: tracking.ConsentCookie, Value: url.QueryEscape(`{"necessary":true,"marketing":true}`)})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	router := setupRouter()
	router = maintenanceModeMiddleware(router, true)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestLocaleHome() {
	router := s.router()

	w := s.get(router, "/en", false)
	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), "en", gjson.Get(w.Body.String(), "locale").String())

	w = s.get(router, "/fr/booking/success?session_id=cs_1", false)
	assert.Equal(s.T(), 404, w.Code)
}

func (s *TestSuite) TestBookingSuccess() {
	s.Run("Should redirect home without a session id", func() {
		w := s.get(s.router(), "/en/booking/success", false)
		assert.Equal(s.T(), http.StatusTemporaryRedirect, w.Code)
		assert.Equal(s.T(), "/en", w.Header().Get("Location"))
		assert.Zero(s.T(), s.Finalizer.calls)
	})

	s.Run("Should render a confirmed booking and track it once", func() {
		s.Reader.intent = confirmedIntent()
		s.Redis.ExpectSetNX(tracking.DedupeKey(s.SID, "purchase_"+sessionID), "1", 24*time.Hour).SetVal(true)
		s.Redis.ExpectSetNX(tracking.DedupeKey(s.SID, "booking_complete_"+sessionID), "1", 24*time.Hour).SetVal(true)

		w := s.get(s.router(), "/nl/booking/success?session_id="+sessionID, true)
		assert.Equal(s.T(), 200, w.Code)

		body := w.Body.String()
		assert.Equal(s.T(), "confirmed", gjson.Get(body, "data.state").String())
		assert.Equal(s.T(), "28950E", gjson.Get(body, "data.booking.booking_number").String())
		assert.Equal(s.T(), "14 maart 2025", gjson.Get(body, "data.booking.date").String())
		assert.Equal(s.T(), "14:30", gjson.Get(body, "data.booking.time").String())
		assert.Equal(s.T(), "data:image/jpeg;base64,qr-28950E", gjson.Get(body, "data.booking.qr_code").String())
		assert.True(s.T(), gjson.Get(body, "data.tracked").Bool())
		assert.Zero(s.T(), s.Finalizer.calls)
		assert.NoError(s.T(), s.Redis.ExpectationsWereMet())
	})
}

func (s *TestSuite) TestBookingSuccessAlreadyTrackedInSession() {
	s.Reader.intent = confirmedIntent()
	s.Redis.ExpectSetNX(tracking.DedupeKey(s.SID, "purchase_"+sessionID), "1", 24*time.Hour).SetVal(false)
	s.Redis.ExpectSetNX(tracking.DedupeKey(s.SID, "booking_complete_"+sessionID), "1", 24*time.Hour).SetVal(false)

	w := s.get(s.router(), "/nl/booking/success?session_id="+sessionID, true)
	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), "confirmed", gjson.Get(w.Body.String(), "data.state").String())
	assert.False(s.T(), gjson.Get(w.Body.String(), "data.tracked").Bool())
	assert.NoError(s.T(), s.Redis.ExpectationsWereMet())
}

func (s *TestSuite) TestBookingSuccessWithoutConsent() {
	s.Reader.intent = confirmedIntent()

	w := s.get(s.router(), "/en/booking/success?session_id="+sessionID, false)
	assert.Equal(s.T(), 200, w.Code)
	assert.False(s.T(), gjson.Get(w.Body.String(), "data.tracked").Bool())
	assert.NoError(s.T(), s.Redis.ExpectationsWereMet())
}

func (s *TestSuite) TestBookingSuccessFailed() {
	s.Finalizer.err = errors.New("connection reset")

	w := s.get(s.router(), "/en/booking/success?session_id="+sessionID, false)
	assert.Equal(s.T(), 200, w.Code)

	body := w.Body.String()
	assert.Equal(s.T(), "failed", gjson.Get(body, "data.state").String())
	assert.Equal(s.T(), "cs_test_a1B2c3D4e5F6...", gjson.Get(body, "data.session_ref").String())
	assert.Equal(s.T(), "/en/booking/success?session_id="+sessionID, gjson.Get(body, "data.retry").String())
	assert.Equal(s.T(), "connection reset", gjson.Get(body, "data.debug").String())
	assert.False(s.T(), gjson.Get(body, "data.booking").Exists())
	assert.Equal(s.T(), 1, s.Finalizer.calls)
}

func (s *TestSuite) TestBookingSuccessStream() {
	pending := confirmedIntent()
	pending.Status = booking.StatusPending
	s.Reader.intent = pending
	s.Finalizer.res = &booking.FinalizeResult{Booking: confirmedIntent()}

	req, _ := http.NewRequest("GET", "/en/booking/success?session_id="+sessionID, nil)
	req.Header.Set("Accept", "text/event-stream")
	w := httptest.NewRecorder()
	s.router().ServeHTTP(w, req)

	body := w.Body.String()
	assert.Equal(s.T(), 200, w.Code)
	loading := strings.Index(body, `"state":"loading"`)
	processing := strings.Index(body, `"state":"processing"`)
	final := strings.Index(body, "event:view")
	assert.True(s.T(), loading >= 0 && loading < processing && processing < final, body)
	assert.Contains(s.T(), body, `"state":"confirmed"`)
}

func (s *TestSuite) TestProcessBooking() {
	router := s.router()

	s.Run("Should reject calls without a service token", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/functions/process-booking", strings.NewReader(`{"stripeSessionId":"cs_1"}`))
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should report a logical error with 200", func() {
		s.Mock.ExpectQuery(`SELECT \* FROM "booking_intents" WHERE stripe_session_id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		token, err := lib.SignServiceToken([]byte(serviceSecret), "site", time.Now())
		assert.Nil(s.T(), err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/functions/process-booking", strings.NewReader(`{"stripeSessionId":"cs_1"}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)
		assert.Equal(s.T(), "booking not found", gjson.Get(w.Body.String(), "error").String())
		assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should reject a body without a session id", func() {
		token, _ := lib.SignServiceToken([]byte(serviceSecret), "site", time.Now())
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/functions/process-booking", strings.NewReader(`{}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestStripeWebhook() {
	router := s.router()

	s.Run("Should reject an unsigned payload", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(`{}`))
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should mark a paid checkout", func() {
		payload := []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":%q,"type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","object":"checkout.session","payment_status":"paid","payment_intent":"pi_123"}}}`, stripe.APIVersion))
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: webhookSecret})

		s.Mock.ExpectBegin()
		s.Mock.ExpectExec(`UPDATE "booking_intents" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		s.Mock.ExpectCommit()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(string(signed.Payload)))
		req.Header.Set("Stripe-Signature", signed.Header)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)
		assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
	})
}

func (s *TestSuite) TestGateLogin() {
	router := s.router()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/gate", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)
	assert.Equal(s.T(), 400, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/v1/gate", strings.NewReader(`{"password":"anything"}`))
	router.ServeHTTP(w, req)
	assert.Equal(s.T(), 200, w.Code)
	assert.NotEmpty(s.T(), w.Result().Cookies())
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
