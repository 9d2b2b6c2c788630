package inference

import (
	"context"
	"fmt"
	"log"
	"strings"

	"harvest-go-srv/internal/models"
)

// Completer is the external text-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const promptTemplate = "Given the filename '%s', provide the metadata in plain text, separating Title, Artist," +
	" and Album with commas, such that they return match when searched on the catalog, and leave blank" +
	" if not specified, remove excess words. Don't label fields and Say nothing else."

// Adapter turns filenames with no usable tags into structured descriptors
// by asking the completion service to read the filename.
type Adapter struct {
	completer Completer
}

func NewAdapter(c Completer) *Adapter {
	return &Adapter{completer: c}
}

// Infer issues one completion per filename and parses each reply.
// A failed call skips that filename and moves on: one bad completion must
// never block the rest of the batch. Output order follows input order,
// minus the skipped entries.
func (a *Adapter) Infer(ctx context.Context, filenames []string) []models.SongDescriptor {
	descriptors := make([]models.SongDescriptor, 0, len(filenames))

	for _, name := range filenames {
		reply, err := a.completer.Complete(ctx, fmt.Sprintf(promptTemplate, name))
		if err != nil {
			log.Printf("inference failed for %q: %v", name, err)
			continue
		}

		d := ParseReply(reply)
		d.SourceFilename = name
		descriptors = append(descriptors, d)
	}

	return descriptors
}

// ParseReply splits a completion reply on commas into Title, Artist, Album.
// Short replies are right-padded with empty fields so the result always has
// all three; fields beyond the album are discarded.
func ParseReply(reply string) models.SongDescriptor {
	fields := strings.Split(reply, ",")
	for len(fields) < 3 {
		fields = append(fields, "")
	}

	return models.SongDescriptor{
		Title:  strings.TrimSpace(fields[0]),
		Artist: strings.TrimSpace(fields[1]),
		Album:  strings.TrimSpace(fields[2]),
	}
}
