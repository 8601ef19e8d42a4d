package services

import (
	"bytes"
	"testing"

	"contest-ledger/models"

	"github.com/stretchr/testify/assert"
)

func TestWriteDonationEvents(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer

	writeDonationEvents(&buf, []models.Donation{
		{ID: 1, Donor: "alice", Recipient: "bob", Amount: 5, Asset: testAsset},
		{ID: 2, Donor: "carol", Recipient: "bob", Amount: 7, Asset: testAsset},
	}, f.log.WithField("test", "sse"))

	out := buf.String()
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("event: donation\n")))
	assert.Contains(t, out, `data: {"id":1,"donor":"alice","recipient":"bob","amount":5,"asset":"XLM","message":"","timestamp":0}`+"\n\n")
	assert.Contains(t, out, `"id":2`)
}

func TestDonationStreamPollInterval(t *testing.T) {
	f := newFixture(t)
	svc := NewDonationService(f.env, f.log)
	assert.Equal(t, defaultStreamPollInterval, svc.streamPoll)
}
