// Package models defines the note entity shared by the Notish client layers:
// repositories persist it, services keep it in memory and views group it.
//
// A Note is owned by exactly one user (OwnerID) and every store query is
// scoped by that owner. Tags are never edited directly; they are derived from
// TextContent by package tags on every save. Project is never empty once
// persisted: an absent label is normalised to DefaultProject.
//
// NoteFields carries creation values, NotePatch carries partial updates.
package models
