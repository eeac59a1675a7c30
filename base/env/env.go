package env

import (
	"os"
)

// PodName tags metrics with the replica, e.g. fpomarket-api-6868d88fbd-bz8zv
func PodName() string {
	return os.Getenv("PODNAME")
}

// MongoURI points the mongo backed tests at a live server, they skip when empty
func MongoURI() string {
	return os.Getenv("MONGO_URI")
}

// NatsURL points the nats transport tests at a live server, they skip when empty
func NatsURL() string {
	return os.Getenv("NATS_URL")
}
