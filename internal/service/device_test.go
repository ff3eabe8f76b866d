package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/dtroode/contractchecker-server/internal/apierror"
	"github.com/dtroode/contractchecker-server/internal/mail"
	"github.com/dtroode/contractchecker-server/internal/mocks"
	"github.com/dtroode/contractchecker-server/internal/model"
	"github.com/dtroode/contractchecker-server/internal/testutil"
)

const testOTPFrom = "Security Contract Checker <otp@contractchecker.net>"

var (
	sixDigits     = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	deviceIDShape = regexp.MustCompile(`^device_[0-9]+_[0-9a-f]{32}$`)
	testIdentity  = model.Identity{UID: "uid-1", Email: "a@b.co"}
)

type deviceFixture struct {
	svc        *Device
	devices    *memDevices
	challenges *memChallenges
	mailer     *recordingMailer
	clock      *fakeClock
}

func newDeviceFixture(opts ...DeviceOption) *deviceFixture {
	f := &deviceFixture{
		devices:    newMemDevices(),
		challenges: newMemChallenges(),
		mailer:     &recordingMailer{},
		clock:      &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.challenges.devices = f.devices
	opts = append([]DeviceOption{WithNow(f.clock.Now)}, opts...)
	f.svc = NewDevice(f.devices, f.challenges, f.mailer, testOTPFrom, testutil.MakeNoopLogger(), opts...)
	return f
}

func (f *deviceFixture) issue(t *testing.T) model.OTPChallenge {
	t.Helper()
	res, err := f.svc.CheckDevice(context.Background(), testIdentity, model.CheckDeviceRequest{})
	require.NoError(t, err)
	require.Equal(t, model.DeviceStatusOTPSent, res.Status)
	c, err := f.challenges.Get(context.Background(), testIdentity.UID)
	require.NoError(t, err)
	return c
}

func TestDevice_Unauthenticated(t *testing.T) {
	f := newDeviceFixture()

	_, err := f.svc.CheckDevice(context.Background(), model.Identity{}, model.CheckDeviceRequest{DeviceID: "d"})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, codes.Unauthenticated, apiErr.GRPCCode)
	assert.Equal(t, "User must be logged in", apiErr.Message)

	_, err = f.svc.VerifyDevice(context.Background(), model.Identity{}, model.VerifyDeviceRequest{OTP: "123456"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "User must be logged in", apiErr.Message)

	assert.Empty(t, f.challenges.challenges)
}

func TestDevice_CheckDevice_IssuesChallenge(t *testing.T) {
	for _, deviceID := range []string{"", "device_unknown"} {
		deviceID := deviceID
		t.Run("device id "+deviceID, func(t *testing.T) {
			f := newDeviceFixture()

			res, err := f.svc.CheckDevice(context.Background(), testIdentity, model.CheckDeviceRequest{DeviceID: deviceID})
			require.NoError(t, err)
			assert.Equal(t, model.DeviceStatusOTPSent, res.Status)

			require.Len(t, f.challenges.challenges, 1)
			c := f.challenges.challenges[testIdentity.UID]
			assert.Regexp(t, sixDigits, c.Code)
			assert.Equal(t, 300000*time.Millisecond, c.ExpiresAt.Sub(f.clock.Now()))

			require.Len(t, f.mailer.sent, 1)
			msg := f.mailer.sent[0]
			assert.Equal(t, testOTPFrom, msg.From)
			assert.Equal(t, []string{"a@b.co"}, msg.To)
			assert.Equal(t, mail.OTPSubject, msg.Subject)
			assert.Contains(t, msg.HTML, c.Code)
			assert.Contains(t, msg.HTML, "2026")
		})
	}
}

func TestDevice_CheckDevice_ReissueOverwrites(t *testing.T) {
	issued := []string{"111111", "222222"}
	var i int
	f := newDeviceFixture(WithCodeGenerator(func() (string, error) {
		c := issued[i]
		i++
		return c, nil
	}))

	f.issue(t)
	c := f.issue(t)

	require.Len(t, f.challenges.challenges, 1)
	assert.Equal(t, "222222", c.Code)
}

func TestDevice_CheckDevice_NoEmail(t *testing.T) {
	f := newDeviceFixture()

	res, err := f.svc.CheckDevice(context.Background(), model.Identity{UID: "uid-2"}, model.CheckDeviceRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusOTPSent, res.Status)
	assert.Len(t, f.challenges.challenges, 1)
	assert.Empty(t, f.mailer.sent)
}

func TestDevice_CheckDevice_Trusted(t *testing.T) {
	f := newDeviceFixture()
	created := f.clock.Now().Add(-24 * time.Hour)
	require.NoError(t, f.devices.Create(context.Background(), model.TrustedDevice{
		UserID: testIdentity.UID, DeviceID: "device_1", UserAgent: "ua", CreatedAt: created, LastUsed: created,
	}))

	res, err := f.svc.CheckDevice(context.Background(), testIdentity, model.CheckDeviceRequest{DeviceID: "device_1"})
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusTrusted, res.Status)

	d := f.devices.devices[deviceKey{testIdentity.UID, "device_1"}]
	assert.Equal(t, f.clock.Now(), d.LastUsed)
	assert.Equal(t, created, d.CreatedAt)
	assert.Empty(t, f.challenges.challenges)
	assert.Empty(t, f.mailer.sent)
}

func TestDevice_CheckDevice_OtherUsersDevice(t *testing.T) {
	f := newDeviceFixture()
	require.NoError(t, f.devices.Create(context.Background(), model.TrustedDevice{UserID: "someone-else", DeviceID: "device_1"}))

	res, err := f.svc.CheckDevice(context.Background(), testIdentity, model.CheckDeviceRequest{DeviceID: "device_1"})
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusOTPSent, res.Status)
}

func TestDevice_VerifyDevice_Success(t *testing.T) {
	f := newDeviceFixture()
	c := f.issue(t)

	res, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: c.Code, UserAgent: "Mozilla/5.0"})
	require.NoError(t, err)
	assert.Equal(t, model.VerifyStatusSuccess, res.Status)
	assert.Regexp(t, deviceIDShape, res.NewDeviceID)

	assert.Empty(t, f.challenges.challenges)
	require.Equal(t, 1, f.devices.count())
	d := f.devices.devices[deviceKey{testIdentity.UID, res.NewDeviceID}]
	assert.Equal(t, "Mozilla/5.0", d.UserAgent)
	assert.Equal(t, f.clock.Now(), d.CreatedAt)
	assert.Equal(t, f.clock.Now(), d.LastUsed)

	again, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: c.Code})
	require.NoError(t, err)
	assert.Equal(t, model.VerifyStatusInvalid, again.Status)
	assert.Equal(t, 1, f.devices.count())

	check, err := f.svc.CheckDevice(context.Background(), testIdentity, model.CheckDeviceRequest{DeviceID: res.NewDeviceID})
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusTrusted, check.Status)
}

func TestDevice_VerifyDevice_DefaultUserAgent(t *testing.T) {
	f := newDeviceFixture()
	c := f.issue(t)

	res, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: c.Code})
	require.NoError(t, err)
	assert.Equal(t, "unknown", f.devices.devices[deviceKey{testIdentity.UID, res.NewDeviceID}].UserAgent)
}

func TestDevice_VerifyDevice_NoChallenge(t *testing.T) {
	f := newDeviceFixture()

	res, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: "123456"})
	require.NoError(t, err)
	assert.Equal(t, model.VerifyDeviceResult{Status: model.VerifyStatusInvalid}, res)
}

func TestDevice_VerifyDevice_Expired(t *testing.T) {
	for name, correct := range map[string]bool{"correct code": true, "wrong code": false} {
		correct := correct
		t.Run(name, func(t *testing.T) {
			f := newDeviceFixture()
			c := f.issue(t)
			f.clock.Advance(5*time.Minute + time.Millisecond)

			otp := "000000"
			if correct {
				otp = c.Code
			}
			res, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: otp})
			require.NoError(t, err)
			assert.Equal(t, model.VerifyStatusExpired, res.Status)
			assert.Empty(t, res.NewDeviceID)
			assert.Empty(t, f.challenges.challenges)
			assert.Zero(t, f.devices.count())
		})
	}
}

func TestDevice_VerifyDevice_AtExpiryBoundary(t *testing.T) {
	f := newDeviceFixture()
	c := f.issue(t)
	f.clock.Advance(5 * time.Minute)

	res, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: c.Code})
	require.NoError(t, err)
	assert.Equal(t, model.VerifyStatusSuccess, res.Status)
}

func TestDevice_VerifyDevice_WrongCodeThenRetry(t *testing.T) {
	f := newDeviceFixture(WithCodeGenerator(func() (string, error) { return "654321", nil }))
	f.issue(t)

	for i := 0; i < 10; i++ {
		res, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: "123456"})
		require.NoError(t, err)
		assert.Equal(t, model.VerifyStatusInvalid, res.Status)
	}
	assert.Len(t, f.challenges.challenges, 1)

	res, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: "654321"})
	require.NoError(t, err)
	assert.Equal(t, model.VerifyStatusSuccess, res.Status)
}

func TestDevice_VerifyDevice_ConcurrentRedemption(t *testing.T) {
	f := newDeviceFixture()
	c := f.issue(t)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]model.VerifyStatus, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: c.Code})
			assert.NoError(t, err)
			results[i] = res.Status
		}(i)
	}
	wg.Wait()

	var successes int
	for _, s := range results {
		if s == model.VerifyStatusSuccess {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, f.devices.count())
}

func TestDevice_VerifyDevice_Locked(t *testing.T) {
	lim := mocks.NewAttemptLimiter(t)
	lim.On("Reset", mock.Anything, testIdentity.UID).Return(nil)
	lim.On("Fail", mock.Anything, testIdentity.UID).Return(false, nil).Once()
	lim.On("Fail", mock.Anything, testIdentity.UID).Return(true, nil).Once()

	f := newDeviceFixture(WithLimiter(lim), WithCodeGenerator(func() (string, error) { return "654321", nil }))
	f.issue(t)

	res, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: "111111"})
	require.NoError(t, err)
	assert.Equal(t, model.VerifyStatusInvalid, res.Status)

	res, err = f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: "111111"})
	require.NoError(t, err)
	assert.Equal(t, model.VerifyStatusLocked, res.Status)
	assert.Empty(t, f.challenges.challenges)

	res, err = f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: "654321"})
	require.NoError(t, err)
	assert.Equal(t, model.VerifyStatusInvalid, res.Status)
}

func TestDevice_StoreFailures(t *testing.T) {
	boom := errors.New("db down")

	t.Run("touch fails", func(t *testing.T) {
		devices := mocks.NewDeviceStore(t)
		devices.On("Touch", mock.Anything, "uid-1", "device_1", mock.Anything).Return(false, boom)
		svc := NewDevice(devices, mocks.NewChallengeStore(t), mocks.NewMailer(t), testOTPFrom, testutil.MakeNoopLogger())

		_, err := svc.CheckDevice(context.Background(), testIdentity, model.CheckDeviceRequest{DeviceID: "device_1"})
		require.ErrorIs(t, err, boom)
	})

	t.Run("upsert fails", func(t *testing.T) {
		challenges := mocks.NewChallengeStore(t)
		challenges.On("Upsert", mock.Anything, mock.Anything).Return(boom)
		svc := NewDevice(mocks.NewDeviceStore(t), challenges, mocks.NewMailer(t), testOTPFrom, testutil.MakeNoopLogger())

		_, err := svc.CheckDevice(context.Background(), testIdentity, model.CheckDeviceRequest{})
		require.ErrorIs(t, err, boom)
	})

	t.Run("mail fails", func(t *testing.T) {
		challenges := mocks.NewChallengeStore(t)
		challenges.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		mailer := mocks.NewMailer(t)
		mailer.On("Send", mock.Anything, mock.Anything).Return(boom)
		svc := NewDevice(mocks.NewDeviceStore(t), challenges, mailer, testOTPFrom, testutil.MakeNoopLogger())

		_, err := svc.CheckDevice(context.Background(), testIdentity, model.CheckDeviceRequest{})
		require.ErrorIs(t, err, boom)
	})

	t.Run("get challenge fails", func(t *testing.T) {
		challenges := mocks.NewChallengeStore(t)
		challenges.On("Get", mock.Anything, "uid-1").Return(model.OTPChallenge{}, boom)
		svc := NewDevice(mocks.NewDeviceStore(t), challenges, mocks.NewMailer(t), testOTPFrom, testutil.MakeNoopLogger())

		_, err := svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: "123456"})
		require.ErrorIs(t, err, boom)
	})

	t.Run("redeem fails", func(t *testing.T) {
		now := time.Now()
		challenges := mocks.NewChallengeStore(t)
		challenges.On("Get", mock.Anything, "uid-1").Return(model.OTPChallenge{UserID: "uid-1", Code: "123456", ExpiresAt: now.Add(time.Minute)}, nil)
		challenges.On("Redeem", mock.Anything, "uid-1", "123456", mock.MatchedBy(func(d model.TrustedDevice) bool {
			return d.UserID == "uid-1" && d.UserAgent == model.UnknownUserAgent && deviceIDShape.MatchString(d.DeviceID)
		})).Return(false, boom)
		svc := NewDevice(mocks.NewDeviceStore(t), challenges, mocks.NewMailer(t), testOTPFrom, testutil.MakeNoopLogger(), WithNow(func() time.Time { return now }))

		_, err := svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: "123456"})
		require.ErrorIs(t, err, boom)
	})
}

func TestDevice_VerifyDevice_RetryAfterDeviceWriteFailure(t *testing.T) {
	f := newDeviceFixture()
	c := f.issue(t)
	f.devices.failNextCreate = errors.New("db down")

	_, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: c.Code})
	require.Error(t, err)
	assert.Equal(t, 0, f.devices.count())

	f.clock.Advance(time.Minute)
	res, err := f.svc.VerifyDevice(context.Background(), testIdentity, model.VerifyDeviceRequest{OTP: c.Code})
	require.NoError(t, err)
	assert.Equal(t, model.VerifyStatusSuccess, res.Status)
	assert.Equal(t, 1, f.devices.count())

	_, err = f.challenges.Get(context.Background(), testIdentity.UID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
