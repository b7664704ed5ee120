package user

type UserOption func(*User)

func WithEmail(email *string) UserOption {
	if email == nil {
		return nil
	}
	return func(user *User) {
		user.Email = *email
	}
}

func WithFirstName(firstName *string) UserOption {
	if firstName == nil {
		return nil
	}
	return func(user *User) {
		user.FirstName = *firstName
	}
}

func WithLastName(lastName *string) UserOption {
	if lastName == nil {
		return nil
	}
	return func(user *User) {
		user.LastName = *lastName
	}
}
