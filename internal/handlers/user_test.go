package handlers

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

// Register and the email-changing updates branch on IsDuplicateKeyError when
// the unique email index fires; this pins the error shapes that branch must
// catch.
func TestDuplicateKeyErrorDetection(t *testing.T) {
	writeErr := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Code: 11000, Message: "E11000 duplicate key error collection: toolstore.users index: email_unique"},
		},
	}
	if !mongo.IsDuplicateKeyError(writeErr) {
		t.Fatal("expected write exception with code 11000 to be a duplicate key error")
	}

	cmdErr := mongo.CommandError{Code: 11000}
	if !mongo.IsDuplicateKeyError(cmdErr) {
		t.Fatal("expected command error with code 11000 to be a duplicate key error")
	}

	if mongo.IsDuplicateKeyError(errors.New("connection reset")) {
		t.Fatal("plain errors must not be treated as duplicate keys")
	}
}
