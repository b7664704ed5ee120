package task

type TaskOption func(*Task)

func WithTitle(title *string) TaskOption {
	if title == nil {
		return nil
	}
	return func(task *Task) {
		task.Title = *title
	}
}

func WithDescription(description *string) TaskOption {
	if description == nil {
		return nil
	}
	return func(task *Task) {
		task.Description = *description
	}
}

func WithStatus(status *Status) TaskOption {
	if status == nil {
		return nil
	}
	return func(task *Task) {
		task.Status = *status
	}
}
