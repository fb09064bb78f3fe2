package pagination

import "github.com/fathima-sithara/video-service/internal/utils"

func errInvalid(field string) error {
	return utils.BadRequest("%s must be a positive integer", field)
}
