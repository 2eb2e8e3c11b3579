package identity

import (
	"errors"

	"github.com/acme/identity-service/internal/domain"
)

func domainCode(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal_error"
}
