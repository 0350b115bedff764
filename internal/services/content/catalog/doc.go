// Package catalog holds the preloaded content documents served by the
// content service.
//
// An Index is built once by the preload scan and then published to a Store by
// wholesale replacement. Readers of a Store observe either no index at all or
// a complete one; they never see a partially built mapping.
package catalog
