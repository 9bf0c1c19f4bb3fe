package models

import "time"

const RoleAdmin = "admin"

// Admin is an operator of the admin panel.
type Admin struct {
	ID        string    `bson:"_id" firestore:"-" json:"id"`
	Email     string    `bson:"email" firestore:"email" json:"email"`
	Name      string    `bson:"name" firestore:"name" json:"name"`
	Password  string    `bson:"password" firestore:"password" json:"-"`
	Role      string    `bson:"role" firestore:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
}
