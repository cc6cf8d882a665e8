package service

import (
	"testing"
	"time"

	"ERPAdmin/internal/cli/model"

	"github.com/stretchr/testify/assert"
)

func withLicense(expires string) model.Subscriber {
	return model.Subscriber{License: &model.SubscriberLicense{ExpiresAt: expires}}
}

func TestLicenseExpiringSoon(t *testing.T) {
	assert.False(t, LicenseExpiringSoon(model.Subscriber{}, fixedNow))
	assert.True(t, LicenseExpiringSoon(withLicense(at(10*day)), fixedNow))
	assert.True(t, LicenseExpiringSoon(withLicense(at(time.Hour)), fixedNow))
	assert.False(t, LicenseExpiringSoon(withLicense(at(45*day)), fixedNow))
	assert.False(t, LicenseExpiringSoon(withLicense(at(-day)), fixedNow))
}

func TestLicenseExpired(t *testing.T) {
	assert.True(t, LicenseExpired(model.Subscriber{}, fixedNow))
	assert.True(t, LicenseExpired(withLicense(at(-time.Minute)), fixedNow))
	assert.False(t, LicenseExpired(withLicense(at(time.Minute)), fixedNow))
	assert.True(t, LicenseExpired(withLicense("garbage"), fixedNow))
}
