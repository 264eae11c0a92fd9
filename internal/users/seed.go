package users

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// SeedUsers returns the initial team. Every account shares passwordHash.
func SeedUsers(passwordHash string) []User {
	seed := []struct {
		id     int64
		name   string
		avatar string
		email  string
		roleID string
		status Status
	}{
		{1, "Mohammed Semeem", "semeem", "semeem@tabdeel.io", "Administrator", StatusActive},
		{11, "Sabu", "sabu", "mail@jsabu.com", "Administrator", StatusActive},
		{2, "Suhair Mahmoud", "suhair", "suhair@tabdeel.io", "Manager", StatusActive},
		{3, "Sreejith", "sreejith", "sreejith@tabdeel.io", "Manager", StatusActive},
		{4, "Shiraj", "shiraj", "shiraj@tabdeel.io", "Finance", StatusActive},
		{5, "Suju", "suju", "suju@tabdeel.io", "Manager", StatusActive},
		{6, "NOUMAN", "nouman", "nouman@tabdeel.io", "Technician", StatusActive},
		{7, "Benhur", "benhur", "benhur@tabdeel.io", "Technician", StatusActive},
		{8, "Nakul", "nakul", "nakul@tabdeel.io", "Technician", StatusDisabled},
		{9, "Elwin", "elwin", "elwin@tabdeel.io", "Finance", StatusActive},
		{10, "Peesto", "peesto", "peesto@tabdeel.io", "Finance", StatusActive},
	}
	out := make([]User, 0, len(seed))
	for _, s := range seed {
		out = append(out, User{
			ID:           s.id,
			Name:         s.name,
			Email:        s.email,
			AvatarURL:    AvatarURL(s.avatar),
			RoleID:       s.roleID,
			Status:       s.status,
			PasswordHash: passwordHash,
		})
	}
	return out
}
