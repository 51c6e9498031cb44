package repository

import (
	"fmt"
	"math/rand/v2"

	"github.com/Domenick1991/tripassist/internal/domain"
)

// maxReferenceAttempts bounds collision re-rolls when allocating a PNR.
const maxReferenceAttempts = 20

func randomReference() string {
	return fmt.Sprintf("PNR%d", 10000+rand.IntN(90000))
}

// nextReference draws candidates from gen until exists reports a free one.
func nextReference(gen func() string, exists func(string) (bool, error)) (string, error) {
	for range maxReferenceAttempts {
		candidate := gen()
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("check reference %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", domain.ErrReferenceSpaceExhausted
}
