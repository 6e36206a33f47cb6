package main

import (
	"context"
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoURI builds a connection URI from the connect parameters. Credentials
// are optional; many local instances run without auth.
func mongoURI(p ConnectParams, host string, port int) string {
	if p.User != "" {
		return fmt.Sprintf("mongodb://%s@%s:%d/",
			url.UserPassword(p.User, p.Password).String(), host, port)
	}
	return fmt.Sprintf("mongodb://%s:%d/", host, port)
}

// mongoConnect establishes and probes a client. The document-store adapter
// is a connection probe in current scope; richer operations hang off the
// same client later.
func mongoConnect(ctx context.Context, p ConnectParams, host string, port int) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI(p, host, port)))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// mongoListDatabases returns the names of every database on the server.
func mongoListDatabases(ctx context.Context, client *mongo.Client) ([]string, error) {
	return client.ListDatabaseNames(ctx, bson.D{})
}
