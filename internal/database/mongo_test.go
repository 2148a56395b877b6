package database

import "testing"

func TestDatabaseName(t *testing.T) {
	tests := map[string]string{
		"mongodb://localhost:27017":                           DefaultMongoDatabase,
		"mongodb://localhost:27017/":                          DefaultMongoDatabase,
		"mongodb://localhost:27017/telemetry":                 "telemetry",
		"mongodb+srv://u:p@cluster.example.net/archive?tls=1": "archive",
		"mongodb://localhost:27017/?replicaSet=rs0":           DefaultMongoDatabase,
	}
	for uri, want := range tests {
		if got := databaseName(uri); got != want {
			t.Errorf("databaseName(%q) = %q, want %q", uri, got, want)
		}
	}
}
