package models

import (
	"time"

	"github.com/hirehub/core/internal/pkg/phone"
)

// User types.
const (
	UserTypeRecruiter = "recruiter"
	UserTypeJobSeeker = "job_seeker"
)

// Genders.
const (
	GenderMale        = "male"
	GenderFemale      = "female"
	GenderTransgender = "transgender"
)

// UserModel is an account: a job seeker or a recruiter.
type UserModel struct {
	Base
	Email         string        `json:"email"        gorm:"uniqueIndex;size:254;not null"`
	Username      string        `json:"username"     gorm:"uniqueIndex;size:150;not null"`
	FirstName     string        `json:"first_name"   gorm:"size:150"`
	LastName      string        `json:"last_name"    gorm:"size:150"`
	Password      string        `json:"-"`
	PhoneNumber   *phone.Number `json:"phone_number" gorm:"size:32"`
	Type          *string       `json:"type"         gorm:"size:512"`
	IsStaff       bool          `json:"is_staff"`
	LastLoginTime *time.Time    `json:"last_login_time"`
}

func (UserModel) TableName() string { return "users" }

// FullName joins first and last name.
func (u *UserModel) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserDetailModel holds profile data of a user.
type UserDetailModel struct {
	Base
	UserID         uint              `json:"user"          gorm:"index;not null"`
	User           *UserModel        `json:"-"`
	Address        map[string]any    `json:"address"       gorm:"type:text;serializer:json"`
	DateOfBirth    *time.Time        `json:"date_of_birth" gorm:"type:date"`
	Gender         string            `json:"gender"        gorm:"size:512;not null"`
	ProfileImageID *uint             `json:"profile_image" gorm:"index"`
	ProfileImage   *ImageUploadModel `json:"-"`
	ResumeID       *uint             `json:"resume"        gorm:"index"`
	Resume         *FileUploadModel  `json:"-"`
	Skills         []*SkillModel     `json:"-"             gorm:"many2many:user_detail_skills"`
	CreatedByID    *uint             `json:"created_by"    gorm:"index"`
	CreatedBy      *UserModel        `json:"-"`
	ModifiedByID   *uint             `json:"modified_by"   gorm:"index"`
	ModifiedBy     *UserModel        `json:"-"`
}

func (UserDetailModel) TableName() string { return "user_details" }

// SkillModel is a taggable skill.
type SkillModel struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex;size:191;not null"`
}

func (SkillModel) TableName() string { return "skills" }
