// Package fileutil holds the file system helpers used by the patch engine
// and the generation pipeline: atomic replace, tree copy, zip extraction and
// root-confined path joins.
package fileutil
