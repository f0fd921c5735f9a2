// Package storage implements the shared upload directory behind the file
// access surface.
//
// All files live in a single flat namespace with no ownership metadata or
// sidecar state: the directory listing is the source of truth. Uploads are
// written to a hidden temp file and renamed into place so a partially
// written upload is never observable, and concurrent uploads of the same
// name resolve last-writer-wins.
//
// The image/document split (IsImageName, Partition) is a presentation-layer
// filter over extensions; nothing on disk is partitioned.
package storage
