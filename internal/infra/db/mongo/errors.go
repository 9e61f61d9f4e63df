package mongo

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	indexRoomNumber  = "room_hotel_number_unique"
	indexClientEmail = "client_email_unique"
	indexClientPhone = "client_phone_unique"
	indexResCode     = "reservation_code_unique"
)

// duplicateIndex returns the name of the unique index a write collided with,
// or "" when err is not a duplicate key error.
func duplicateIndex(err error) (string, bool) {
	if !mongo.IsDuplicateKeyError(err) {
		return "", false
	}
	msg := err.Error()
	for _, name := range []string{indexRoomNumber, indexClientEmail, indexClientPhone, indexResCode} {
		if strings.Contains(msg, name) {
			return name, true
		}
	}
	return "", true
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sentinel
	}
	return err
}
