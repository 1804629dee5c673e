package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKinds(t *testing.T) {
	cases := []struct {
		message string
		want    Kind
	}{
		{"get me a ride home", KindRide},
		{"I need a taxi", KindRide},
		{"what's on the menu?", KindMenu},
		{"I'd like to order a coffee", KindOrder},
		{"can you schedule that for tomorrow", KindSchedule},
		{"sign in to my account", KindSignIn},
		{"deliver it to my office", KindDelivery},
		{"okay bye", KindGoodbye},
		{"tell me a joke", KindUnknown},
		{"", KindUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Detect(tc.message), "message %q", tc.message)
	}
}

func TestDetectIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, Detect("BOOK ME A RIDE"), Detect("book me a ride"))
}

func TestDetectGoodbyeWinsOverOtherKeywords(t *testing.T) {
	// A farewell ends the conversation even when it mentions another topic.
	assert.Equal(t, KindGoodbye, Detect("no ride needed, goodbye"))
}
