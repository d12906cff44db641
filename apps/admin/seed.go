package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/kozihq/kozi/core/course"
	"github.com/kozihq/kozi/core/user"
)

var seedCourses = []course.Course{
	{
		Title:       "Python Programming",
		Description: "Learn Python from scratch",
		Category:    "Programming",
		Instructor:  "John Doe",
		Duration:    40,
		Level:       course.LevelBeginner,
	},
	{
		Title:       "Web Development",
		Description: "Build websites with Flask",
		Category:    "Web Dev",
		Instructor:  "Jane Smith",
		Duration:    60,
		Level:       course.LevelIntermediate,
	},
	{
		Title:       "Data Science",
		Description: "Introduction to Data Analysis",
		Category:    "Data",
		Instructor:  "Mike Johnson",
		Duration:    80,
		Level:       course.LevelAdvanced,
	},
}

// seed loads the default admin account and the sample catalog. Re-running is
// harmless: existing records are left alone.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	if _, err := cli.usrRepo.GetUserByUsername(ctx, "admin"); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		admin := user.User{
			Name:      "Admin",
			Username:  "admin",
			Email:     "admin@kozi.test",
			IsActive:  true,
			Roles:     user.AllRoles,
			Theme:     user.ThemeLight,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = admin.SetPassword("admin123"); err != nil {
			return errors.Wrap(err, "hashing admin password")
		}
		if _, err = cli.usrRepo.CreateUser(ctx, admin); err != nil {
			return errors.Wrap(err, "creating admin user")
		}
	}

	existing, err := cli.crsRepo.QueryAllCourses(ctx)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	byTitle := make(map[string]bool, len(existing))
	for _, crs := range existing {
		byTitle[crs.Title] = true
	}

	now := time.Now().UTC()
	for _, crs := range seedCourses {
		if byTitle[crs.Title] {
			continue
		}
		crs.CreatedAt = now
		crs.UpdatedAt = now
		if _, err = cli.crsRepo.CreateCourse(ctx, crs); err != nil {
			return errors.Wrap(err, "creating course "+crs.Title)
		}
	}
	return nil
}
