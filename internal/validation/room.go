package validation

import (
	"fmt"
	"regexp"
)

// RoomIDPattern определяет допустимый формат идентификатора комнаты:
// 6 символов base36 в нижнем регистре, как выдает генератор комнат.
var RoomIDPattern = regexp.MustCompile(`^[a-z0-9]{6}$`)

// RoomIDLen длина идентификатора комнаты
const RoomIDLen = 6

// ValidateRoomID проверяет, что идентификатор комнаты соответствует
// формату. Идентификатор приходит из URL и проверяется до обращения
// к хранилищу.
func ValidateRoomID(id string) error {
	if id == "" {
		return fmt.Errorf("room id cannot be empty")
	}

	if len(id) != RoomIDLen {
		return fmt.Errorf("room id must be exactly %d characters long", RoomIDLen)
	}

	if !RoomIDPattern.MatchString(id) {
		return fmt.Errorf("room id can only contain lowercase letters (a-z) and digits (0-9)")
	}

	return nil
}

// ValidateMode проверяет mode-параметр ссылки присоединения.
// Допустимы только view, edit и teacher.
func ValidateMode(mode string) error {
	switch mode {
	case "view", "edit", "teacher":
		return nil
	}
	return fmt.Errorf("mode must be one of view, edit, teacher")
}
