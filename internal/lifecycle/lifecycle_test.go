package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
)

func TestConnectionRequestedFromNew(t *testing.T) {
	trans, err := Apply(models.StatusNew, ConnectionRequested)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, trans.To)
	assert.True(t, trans.StampContacted)
	assert.Equal(t, EffectCreateConnectionRequest, trans.Effect)
}

func TestConnectionRequestedRejectedElsewhere(t *testing.T) {
	for _, from := range []models.ProspectStatus{
		models.StatusContacted,
		models.StatusConnected,
		models.StatusReplied,
		models.StatusNotInterested,
		models.StatusConverted,
	} {
		_, err := Apply(from, ConnectionRequested)
		var viol *ViolationError
		require.ErrorAs(t, err, &viol, "from %s", from)
		assert.Equal(t, from, viol.From)
		assert.Equal(t, ConnectionRequested, viol.Event)
	}
}

func TestConnectionAccepted(t *testing.T) {
	trans, err := Apply(models.StatusContacted, ConnectionAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConnected, trans.To)
	assert.True(t, trans.StampContacted)
	assert.Equal(t, EffectAcceptConnectionRequest, trans.Effect)

	_, err = Apply(models.StatusNew, ConnectionAccepted)
	require.Error(t, err)
}

func TestReplyReceived(t *testing.T) {
	for _, from := range []models.ProspectStatus{models.StatusContacted, models.StatusConnected} {
		trans, err := Apply(from, ReplyReceived)
		require.NoError(t, err, "from %s", from)
		assert.Equal(t, models.StatusReplied, trans.To)
		assert.False(t, trans.StampContacted)
		assert.Equal(t, EffectNone, trans.Effect)
	}

	_, err := Apply(models.StatusNew, ReplyReceived)
	require.Error(t, err)
}

func TestTerminalStatusesAcceptNoEvents(t *testing.T) {
	events := []Event{
		ConnectionRequested, ConnectionAccepted, ReplyReceived,
		MarkedConverted, MarkedNotInterested,
	}
	for _, from := range []models.ProspectStatus{models.StatusConverted, models.StatusNotInterested} {
		for _, ev := range events {
			_, err := Apply(from, ev)
			assert.Error(t, err, "from=%s event=%s", from, ev)
		}
	}
}

func TestManualMarksFromAnyNonTerminal(t *testing.T) {
	for _, from := range []models.ProspectStatus{
		models.StatusNew, models.StatusContacted, models.StatusConnected, models.StatusReplied,
	} {
		trans, err := Apply(from, MarkedConverted)
		require.NoError(t, err, "from %s", from)
		assert.Equal(t, models.StatusConverted, trans.To)

		trans, err = Apply(from, MarkedNotInterested)
		require.NoError(t, err, "from %s", from)
		assert.Equal(t, models.StatusNotInterested, trans.To)
	}
}

func TestUnknownEvent(t *testing.T) {
	_, err := Apply(models.StatusNew, Event("bogus"))
	var viol *ViolationError
	require.True(t, errors.As(err, &viol))
}
