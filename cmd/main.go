package main

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"timetablegen/internal/catalog"
	"timetablegen/internal/model"
	"timetablegen/internal/opb"
)

func main() {
	payload := catalog.Payload{
		Faculty: []catalog.Faculty{
			{ID: "turing", SubjectsCanTeach: []string{"algorithms", "os_lab"}, PreferredSlots: []string{"mon_1"}},
			{ID: "hopper", SubjectsCanTeach: []string{"compilers", "os_lab"}},
		},
		Rooms: []catalog.Room{
			{ID: "aud_1", Capacity: 120},
			{ID: "lab_1", RoomType: "lab", Capacity: 30},
		},
		Subjects: []catalog.Subject{
			{ID: "algorithms", Duration: 1},
			{ID: "compilers", Duration: 1},
			{ID: "os_lab", SubjectType: "lab", Duration: 2, RoomTypeRequired: "lab"},
		},
		Batches: []catalog.Batch{
			{ID: "cs_3a", StudentCount: 28, SubjectList: []string{"algorithms", "compilers", "os_lab"}},
		},
		Timeslots: []string{"mon_1", "mon_2", "mon_3", "mon_4", "tue_1", "tue_2"},
	}

	scheduler := model.NewScheduler(opb.NewGophersatBackend(), model.Options{})

	result, err := scheduler.Generate(payload)
	if err != nil {
		log.Fatal(err)
	} else if result.Status == model.StatusUnsat {
		fmt.Println("Not satisfiable")
		return
	}

	slotOrder := func(slot string) int {
		return slices.Index(payload.Timeslots, slot)
	}
	slices.SortFunc(result.Assignments, func(a, b model.Assignment) int {
		if order := slotOrder(a.Slot) - slotOrder(b.Slot); order != 0 {
			return order
		}
		return strings.Compare(a.SubjectID, b.SubjectID)
	})

	for _, assignment := range result.Assignments {
		fmt.Printf("Slot: %v, Subject: %v, Batch: %v, Room: %v, Faculty: %v\n",
			assignment.Slot, assignment.SubjectID, assignment.BatchID, assignment.RoomID, assignment.FacultyID)
	}

	if !scheduler.Verify(result, payload) {
		log.Fatal("Verification failed")
	}

	fmt.Println("Well done!")
}
