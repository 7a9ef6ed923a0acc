// Package media re-encodes uploaded avatar images.
package media
