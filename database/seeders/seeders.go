package seeders

import (
	"fmt"

	"absensi_go/models"
)

// Built-in fallback datasets. These are what the sync layer returns when both
// the remote store and the local cache come up empty, so a fresh install is
// never faced with an empty roster.

// DefaultStudents returns the bundled roster.
func DefaultStudents() []models.Student {
	return []models.Student{
		// KELAS IX A
		{ID: "1129", ClassName: "IX A", Name: "ABEL AULIA PASA RAMADANI", Gender: "P"},
		{ID: "1132", ClassName: "IX A", Name: "ADITYA FIRMANSYAH", Gender: "L"},
		{ID: "1133", ClassName: "IX A", Name: "AHMAD DANI", Gender: "L"},
		{ID: "1141", ClassName: "IX A", Name: "ANDINI PUTRI", Gender: "P"},
		{ID: "1142", ClassName: "IX A", Name: "BAGAS KARADENAN", Gender: "L"},

		// KELAS IX B
		{ID: "1134", ClassName: "IX B", Name: "ALYA NUR AZIZAH", Gender: "P"},
		{ID: "1135", ClassName: "IX B", Name: "BINTANG RAMADHAN", Gender: "L"},
		{ID: "1143", ClassName: "IX B", Name: "CANTIKA SARI", Gender: "P"},
		{ID: "1144", ClassName: "IX B", Name: "DIMAS ANGGARA", Gender: "L"},

		// KELAS IX C
		{ID: "1136", ClassName: "IX C", Name: "CHAIRUL ANAM", Gender: "L"},
		{ID: "1137", ClassName: "IX C", Name: "DEWI SARTIKA", Gender: "P"},
		{ID: "1145", ClassName: "IX C", Name: "FAJAR SHODIQ", Gender: "L"},
		{ID: "1146", ClassName: "IX C", Name: "GITA GUTAW", Gender: "P"},

		// KELAS IX D
		{ID: "1138", ClassName: "IX D", Name: "EKO PRASETYO", Gender: "L"},
		{ID: "1139", ClassName: "IX D", Name: "FITRIANI", Gender: "P"},
		{ID: "1147", ClassName: "IX D", Name: "HENDRA SETIAWAN", Gender: "L"},
		{ID: "1148", ClassName: "IX D", Name: "INDAH PERMATASARI", Gender: "P"},

		// KELAS IX E
		{ID: "1140", ClassName: "IX E", Name: "GALIH RAKASWI", Gender: "L"},
		{ID: "1149", ClassName: "IX E", Name: "JOKO TINGKIR", Gender: "L"},
		{ID: "1150", ClassName: "IX E", Name: "KARTIKA PUTRI", Gender: "P"},

		// KELAS IX F
		{ID: "1151", ClassName: "IX F", Name: "LUKMAN HAKIM", Gender: "L"},
		{ID: "1152", ClassName: "IX F", Name: "MAWAR MELATI", Gender: "P"},
		{ID: "1153", ClassName: "IX F", Name: "NANDA SAPUTRA", Gender: "L"},

		// KELAS IX G
		{ID: "1154", ClassName: "IX G", Name: "OPICK TOMBOATI", Gender: "L"},
		{ID: "1155", ClassName: "IX G", Name: "PUTRI SALJU", Gender: "P"},
		{ID: "1156", ClassName: "IX G", Name: "QOMARUDDIN", Gender: "L"},
	}
}

// DefaultTeachers returns the bundled staff roster.
func DefaultTeachers() []models.Teacher {
	names := []string{
		"Dra. Sri Hayati",
		"Bakhtiar Rifai, SE",
		"Moch. Husain Rifai Hamzah, S.Pd.",
		"Rudi Hermawan, S.Pd.I",
		"Okha Devi Anggraini, S.Pd.",
		"Eka Hariyati, S. Pd.",
		"Mikoe Wahyudi Putra, ST., S. Pd.",
		"Purnadi, S. Pd.",
		"Israfin Maria Ulfa, S.Pd",
		"Syadam Budi Satrianto, S.Pd",
		"Rebby Dwi Prataopu, S.Si",
		"Mukhamad Yunus, S.Pd",
		"Fahmi Wahyuni, S.Pd",
		"Fakhita Madury, S.Sn",
		"Retno Nawangwulan, S. Pd.",
		"Emilia Kartika Sari, S.Pd",
		"Akhmad Hariadi, S.Pd",
	}
	teachers := make([]models.Teacher, 0, len(names))
	for i, name := range names {
		teachers = append(teachers, models.Teacher{
			ID:   fmt.Sprintf("t_default_%02d", i+1),
			Name: name,
		})
	}
	return teachers
}

// DefaultConfig returns the fixed fallback school configuration.
func DefaultConfig() models.SchoolConfig {
	return models.SchoolConfig{
		AcademicYear: "2025/2026",
		Semester:     models.SemesterGanjil,
	}
}
