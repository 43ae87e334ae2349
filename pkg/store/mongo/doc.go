// Package mongo stores accounts in a single MongoDB document.
//
// The collection holds one document shaped like
//
//	{ "_id": ObjectId(...), "passwords": [ { "name": "...", "password": "..." } ] }
//
// Every operation opens its own client and disconnects it before returning,
// so a Store holds no connection between calls.
package mongo
