package models

import (
	"time"

	"github.com/samber/lo"
)

type UserType string

const (
	UserTypeStudent    UserType = "student"
	UserTypeInstructor UserType = "instructor"
)

type User struct {
	ID    int64    `json:"id"`
	Type  UserType `json:"user_type"`
	Onyen string   `json:"onyen"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
}

type Instructor struct {
	User
}

type Student struct {
	User
	JoinDate      time.Time  `json:"join_date"`
	ExitDate      *time.Time `json:"exit_date"`
	ForkRemoteURL string     `json:"fork_remote_url"`
	ForkCloned    bool       `json:"fork_cloned"`
}

type Course struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	MasterRemoteURL string       `json:"master_remote_url"`
	Instructors     []Instructor `json:"instructors"`
}

func userFromResponse(res UserResponse) User {
	return User{
		ID:    res.ID,
		Type:  UserType(res.UserType),
		Onyen: res.Onyen,
		Name:  res.Name,
		Email: res.Email,
	}
}

func InstructorFromResponse(res InstructorResponse) Instructor {
	return Instructor{User: userFromResponse(res.UserResponse)}
}

func StudentFromResponse(res StudentResponse) (Student, error) {
	joinDate, err := parseDate("join_date", res.JoinDate)
	if err != nil {
		return Student{}, err
	}
	exitDate, err := parseNullableDate("exit_date", res.ExitDate)
	if err != nil {
		return Student{}, err
	}
	return Student{
		User:          userFromResponse(res.UserResponse),
		JoinDate:      joinDate,
		ExitDate:      exitDate,
		ForkRemoteURL: res.ForkRemoteURL,
		ForkCloned:    res.ForkCloned,
	}, nil
}

func CourseFromResponse(res CourseResponse) Course {
	return Course{
		ID:              res.ID,
		Name:            res.Name,
		MasterRemoteURL: res.MasterRemoteURL,
		Instructors:     lo.Map(res.Instructors, func(r InstructorResponse, _ int) Instructor {
			return InstructorFromResponse(r)
		}),
	}
}
