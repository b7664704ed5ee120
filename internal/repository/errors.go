package repository

import "errors"

// ErrNotFound возвращается и для несуществующей записи, и для чужой:
// вызывающий код не должен отличать одно от другого
var ErrNotFound = errors.New("запись не найдена")

var ErrUsernameTaken = errors.New("имя пользователя уже занято")
